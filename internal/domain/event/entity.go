package event

import "time"

// Event はイベントエンティティを表す
// 3つのフラグはそれぞれ座席割り当てルールの有効・無効を表す
type Event struct {
	ID                        int64
	VenueID                   int64
	Name                      string
	Address                   string
	EvenCountRequired         bool
	AllTogetherRequired       bool
	AvoidIsolatedSeatRequired bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Options はイベントの座席割り当てルール設定
type Options struct {
	EvenCount         bool
	AllTogether       bool
	AvoidIsolatedSeat bool
}

// NewEvent は新しいイベントを作成する
func NewEvent(venueID int64, name, address string, opts Options) *Event {
	now := time.Now()
	return &Event{
		VenueID:                   venueID,
		Name:                      name,
		Address:                   address,
		EvenCountRequired:         opts.EvenCount,
		AllTogetherRequired:       opts.AllTogether,
		AvoidIsolatedSeatRequired: opts.AvoidIsolatedSeat,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.VenueID <= 0 {
		return ErrVenueIDRequired
	}
	return nil
}
