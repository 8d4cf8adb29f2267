package venue

import "time"

// Venue は会場エンティティを表す
type Venue struct {
	ID        int64
	Name      string
	Address   string
	Phone     string
	Sectors   []*Sector
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sector は会場内の座席ブロック（列など）を表す
type Sector struct {
	ID         int64
	VenueID    int64
	RefName    string
	TotalSeats int
	Seats      []*Seat
}

// Seat は区画内の番号付き座席を表す
type Seat struct {
	ID         int64
	SectorID   int64
	RefName    string
	SeatNumber int
}

// NewVenue は新しい会場を作成する
func NewVenue(name, address, phone string) *Venue {
	now := time.Now()
	return &Venue{
		Name:      name,
		Address:   address,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddSector は 1..totalSeats の番号で座席を生成して区画を追加する
func (v *Venue) AddSector(refName string, totalSeats int) *Sector {
	s := &Sector{
		VenueID:    v.ID,
		RefName:    refName,
		TotalSeats: totalSeats,
		Seats:      make([]*Seat, 0, totalSeats),
	}
	for n := 1; n <= totalSeats; n++ {
		s.Seats = append(s.Seats, &Seat{SeatNumber: n})
	}
	v.Sectors = append(v.Sectors, s)
	return s
}

// SectorByName は参照名から区画を探す
func (v *Venue) SectorByName(refName string) (*Sector, bool) {
	for _, s := range v.Sectors {
		if s.RefName == refName {
			return s, true
		}
	}
	return nil, false
}

// Validate は会場の検証を行う
func (v *Venue) Validate() error {
	if v.Name == "" {
		return ErrVenueNameRequired
	}
	for _, s := range v.Sectors {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate は区画の検証を行う
// 宣言座席数と実座席数の一致、座席番号の正値・一意性を確認する
func (s *Sector) Validate() error {
	if s.RefName == "" {
		return ErrSectorNameRequired
	}
	if s.TotalSeats != len(s.Seats) {
		return ErrSeatCountMismatch
	}
	seen := make(map[int]struct{}, len(s.Seats))
	for _, seat := range s.Seats {
		if seat.SeatNumber <= 0 {
			return ErrInvalidSeatNumber
		}
		if _, dup := seen[seat.SeatNumber]; dup {
			return ErrDuplicateSeatNumber
		}
		seen[seat.SeatNumber] = struct{}{}
	}
	return nil
}
