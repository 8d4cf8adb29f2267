package ticket

// Ticket は販売単位（あるイベントのある座席1つ）を表す
// SeatNumber と SectorID は座席情報付きで取得した場合に埋まる
type Ticket struct {
	ID            int64
	Cost          int64
	SeatID        int64
	EventID       int64
	VenueID       int64
	ReservationID *int64

	SeatNumber int
	SectorID   int64
}

// NewTicket は新しいチケットを作成する
func NewTicket(eventID, venueID, seatID, cost int64) *Ticket {
	return &Ticket{
		EventID: eventID,
		VenueID: venueID,
		SeatID:  seatID,
		Cost:    cost,
	}
}

// IsReserved はチケットが既に予約に紐付いているかを返す
func (t *Ticket) IsReserved() bool {
	return t.ReservationID != nil
}

// AssignTo はチケットを予約に紐付ける
// 予約IDは一度だけ設定でき、この操作で解除されることはない
func (t *Ticket) AssignTo(reservationID int64) error {
	if t.IsReserved() {
		return &AlreadyReservedError{TicketIDs: []int64{t.ID}}
	}
	t.ReservationID = &reservationID
	return nil
}

// SeatState はあるイベントにおける座席1つの空き状況を表す
type SeatState struct {
	SeatID     int64
	SectorID   int64
	SeatNumber int
	TicketID   int64
	Reserved   bool
}

// IDs はチケットIDの一覧を返す
func IDs(tickets []*Ticket) []int64 {
	ids := make([]int64, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}

// TotalCost はチケット価格の合計を返す
func TotalCost(tickets []*Ticket) int64 {
	var total int64
	for _, t := range tickets {
		total += t.Cost
	}
	return total
}

// SectorIDs はチケットが属する区画IDを重複なく出現順で返す
func SectorIDs(tickets []*Ticket) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, t := range tickets {
		if _, ok := seen[t.SectorID]; ok {
			continue
		}
		seen[t.SectorID] = struct{}{}
		ids = append(ids, t.SectorID)
	}
	return ids
}
