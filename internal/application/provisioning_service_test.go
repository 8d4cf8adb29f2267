package application

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/venue"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/metrics"
)

// storedDemoVenue は DB に保存済みのデモ会場（区画ID 1,2、座席ID 11..16, 21..26）
func storedDemoVenue() *venue.Venue {
	vs, _ := DemoSeed()
	v := venue.NewVenue(vs.Name, vs.Address, vs.Phone)
	v.ID = 1
	for i, sec := range vs.Sectors {
		s := v.AddSector(sec.RefName, sec.TotalSeats)
		s.ID = int64(i + 1)
		for _, seat := range s.Seats {
			seat.SectorID = s.ID
			seat.ID = s.ID*10 + int64(seat.SeatNumber)
		}
	}
	return v
}

func TestDemoSeed(t *testing.T) {
	vs, es := DemoSeed()

	assert.Equal(t, "Concert Venue", vs.Name)
	require.Len(t, vs.Sectors, 2)
	for _, s := range vs.Sectors {
		assert.Equal(t, 6, s.TotalSeats)
	}
	assert.Equal(t, vs.Name, es.VenueName)
	assert.True(t, es.Options.EvenCount)
	assert.True(t, es.Options.AllTogether)
	assert.True(t, es.Options.AvoidIsolatedSeat)
	assert.Equal(t, int64(100), es.SectorCosts["Row 1"])
	assert.Equal(t, int64(60), es.SectorCosts["Row 2"])
}

func TestProvisioningService_SeedVenue(t *testing.T) {
	ctx := context.Background()
	vs, _ := DemoSeed()

	t.Run("新しい会場を区画・座席付きで作成する", func(t *testing.T) {
		deps := newTestDeps()
		deps.expectCommit()
		deps.venueRepo.On("GetByName", ctx, vs.Name).Return(nil, venue.ErrVenueNotFound)
		deps.venueRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*venue.Venue")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*venue.Venue).ID = 7
			}).Return(nil)

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
		v, err := svc.SeedVenue(ctx, vs)

		require.NoError(t, err)
		assert.Equal(t, int64(7), v.ID)
		require.Len(t, v.Sectors, 2)
		assert.Equal(t, "Row 1", v.Sectors[0].RefName)
		require.Len(t, v.Sectors[1].Seats, 6)
		assert.Equal(t, 6, v.Sectors[1].Seats[5].SeatNumber)
		deps.assertExpectations(t)
	})

	t.Run("同名の会場があれば作成しない", func(t *testing.T) {
		deps := newTestDeps()
		existing := storedDemoVenue()
		deps.venueRepo.On("GetByName", ctx, vs.Name).Return(existing, nil)

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
		v, err := svc.SeedVenue(ctx, vs)

		require.NoError(t, err)
		assert.Same(t, existing, v)
		deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("区画名が空なら作成しない", func(t *testing.T) {
		deps := newTestDeps()
		bad := VenueSeed{Name: "bad", Sectors: []SectorSeed{{RefName: "", TotalSeats: 2}}}
		deps.venueRepo.On("GetByName", ctx, "bad").Return(nil, venue.ErrVenueNotFound)

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
		_, err := svc.SeedVenue(ctx, bad)

		assert.ErrorIs(t, err, venue.ErrSectorNameRequired)
		deps.txManager.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("ロックを取得して解放する", func(t *testing.T) {
		deps := newTestDeps()
		lm := new(MockLockManager)
		lock := new(MockLock)
		lm.On("AcquireLockWithRetry", ctx, "seed:venue:"+vs.Name, seedLockTTL, seedLockRetries, seedLockRetryDelay).Return(lock, nil)
		lock.On("Release", ctx).Return(nil)
		deps.venueRepo.On("GetByName", ctx, vs.Name).Return(storedDemoVenue(), nil)

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, lm).WithMetrics(deps.metrics)
		_, err := svc.SeedVenue(ctx, vs)

		require.NoError(t, err)
		lm.AssertExpectations(t)
		lock.AssertExpectations(t)
		assert.Equal(t, 2, testutil.CollectAndCount(deps.metrics.DistributedLockDuration))
	})

	t.Run("ロックが取れなければ投入しない", func(t *testing.T) {
		deps := newTestDeps()
		lm := new(MockLockManager)
		lm.On("AcquireLockWithRetry", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("lock not acquired"))

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, lm).
			WithMetrics(metrics.NewWithRegistry(prometheus.NewRegistry()))
		_, err := svc.SeedVenue(ctx, vs)

		require.Error(t, err)
		deps.venueRepo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	})
}

func TestProvisioningService_SeedEvent(t *testing.T) {
	ctx := context.Background()
	_, es := DemoSeed()

	t.Run("全座席分のチケットを区画の価格で作成する", func(t *testing.T) {
		deps := newTestDeps()
		deps.expectCommit()
		deps.eventRepo.On("GetByName", ctx, es.Name).Return(nil, event.ErrEventNotFound)
		deps.venueRepo.On("GetByName", ctx, es.VenueName).Return(storedDemoVenue(), nil)
		deps.eventRepo.On("Create", ctx, deps.tx, mock.AnythingOfType("*event.Event")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*event.Event).ID = 3
			}).Return(nil)

		var created []*ticket.Ticket
		deps.ticketRepo.On("CreateBulk", ctx, deps.tx, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(2).([]*ticket.Ticket)
			}).Return(nil)

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
		e, err := svc.SeedEvent(ctx, es)

		require.NoError(t, err)
		assert.Equal(t, int64(3), e.ID)
		assert.True(t, e.AvoidIsolatedSeatRequired)
		require.Len(t, created, 12)
		assert.Equal(t, int64(3), created[0].EventID)
		assert.Equal(t, int64(11), created[0].SeatID)
		assert.Equal(t, int64(100), created[0].Cost)
		assert.Equal(t, int64(26), created[11].SeatID)
		assert.Equal(t, int64(60), created[11].Cost)
		assert.Equal(t, int64(6*100+6*60), ticket.TotalCost(created))
		deps.assertExpectations(t)
	})

	t.Run("チケット作成に失敗したらイベントも残らない", func(t *testing.T) {
		deps := newTestDeps()
		deps.expectRollback()
		deps.eventRepo.On("GetByName", ctx, es.Name).Return(nil, event.ErrEventNotFound)
		deps.venueRepo.On("GetByName", ctx, es.VenueName).Return(storedDemoVenue(), nil)
		deps.eventRepo.On("Create", ctx, deps.tx, mock.Anything).Return(nil)
		deps.ticketRepo.On("CreateBulk", ctx, deps.tx, mock.Anything).Return(errors.New("unique violation"))

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
		_, err := svc.SeedEvent(ctx, es)

		require.Error(t, err)
		deps.tx.AssertNotCalled(t, "Commit")
		deps.assertExpectations(t)
	})

	t.Run("会場がなければエラー", func(t *testing.T) {
		deps := newTestDeps()
		deps.eventRepo.On("GetByName", ctx, es.Name).Return(nil, event.ErrEventNotFound)
		deps.venueRepo.On("GetByName", ctx, es.VenueName).Return(nil, venue.ErrVenueNotFound)

		svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
		_, err := svc.SeedEvent(ctx, es)

		assert.ErrorIs(t, err, venue.ErrVenueNotFound)
	})
}

func TestTicketsForVenue_DefaultCost(t *testing.T) {
	v := storedDemoVenue()
	seed := EventSeed{SectorCosts: map[string]int64{"Row 1": 100}, DefaultCost: 10}

	tickets := ticketsForVenue(5, v, seed)

	require.Len(t, tickets, 12)
	assert.Equal(t, int64(100), tickets[0].Cost)
	assert.Equal(t, int64(10), tickets[6].Cost)
	assert.Equal(t, v.ID, tickets[6].VenueID)
}

func TestProvisioningService_DeleteVenue(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps()
	deps.expectRollback()
	deps.venueRepo.On("Delete", ctx, deps.tx, int64(1)).Return(venue.ErrVenueHasReservations)

	svc := NewProvisioningService(deps.txManager, deps.venueRepo, deps.eventRepo, deps.ticketRepo, nil)
	err := svc.DeleteVenue(ctx, 1)

	assert.ErrorIs(t, err, venue.ErrVenueHasReservations)
	deps.assertExpectations(t)
}
