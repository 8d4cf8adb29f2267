package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
)

func TestNewReservation(t *testing.T) {
	tickets := []*ticket.Ticket{
		{ID: 1, Cost: 10000},
		{ID: 2, Cost: 6000},
	}

	r := NewReservation(5, "user@example.com", "090-0000-0000", tickets)

	require.NoError(t, r.Validate())
	assert.Equal(t, int64(5), r.EventID)
	assert.Equal(t, "user@example.com", r.UserEmail)
	assert.Equal(t, "090-0000-0000", r.UserPhone)
	assert.Equal(t, StatusReserved, r.Status)
	assert.Equal(t, 2, r.NumOfTickets)
	assert.Equal(t, int64(16000), r.TotalCost)
	assert.False(t, r.IsPaid())
	assert.NotZero(t, r.CreatedAt)
}

func TestReservation_Validate(t *testing.T) {
	one := []*ticket.Ticket{{ID: 1, Cost: 100}}

	tests := []struct {
		name        string
		reservation *Reservation
		expectedErr error
	}{
		{
			name:        "有効な予約",
			reservation: &Reservation{EventID: 1, NumOfTickets: 1, TotalCost: 100, Tickets: one},
		},
		{
			name:        "イベントID未指定",
			reservation: &Reservation{NumOfTickets: 1, TotalCost: 100, Tickets: one},
			expectedErr: ErrEventIDRequired,
		},
		{
			name:        "チケットなし",
			reservation: &Reservation{EventID: 1},
			expectedErr: ErrNoTickets,
		},
		{
			name:        "チケット数の不一致",
			reservation: &Reservation{EventID: 1, NumOfTickets: 2, TotalCost: 100, Tickets: one},
			expectedErr: ErrTicketCountMismatch,
		},
		{
			name:        "合計金額の不一致",
			reservation: &Reservation{EventID: 1, NumOfTickets: 1, TotalCost: 99, Tickets: one},
			expectedErr: ErrTotalCostMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reservation.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"RESERVED", StatusReserved, false},
		{"PAID", StatusPaid, false},
		{"pending", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
