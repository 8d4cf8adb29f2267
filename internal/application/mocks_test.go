package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/outbox"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/venue"
	redisinfra "github.com/sanosuguru/go-venue-seat-reservation/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, tx transaction.Tx, id int64) (*event.Event, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) GetByName(ctx context.Context, name string) (*event.Event, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

// MockTicketRepository implements ticket.Repository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	args := m.Called(ctx, tx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByIDsForUpdate(ctx context.Context, tx transaction.Tx, ids []int64) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetSeatStates(ctx context.Context, tx transaction.Tx, eventID int64, sectorIDs []int64) ([]*ticket.SeatState, error) {
	args := m.Called(ctx, tx, eventID, sectorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.SeatState), args.Error(1)
}

func (m *MockTicketRepository) AssignReservation(ctx context.Context, tx transaction.Tx, ids []int64, reservationID int64) error {
	args := m.Called(ctx, tx, ids, reservationID)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByReservationID(ctx context.Context, reservationID int64) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountAvailableByEventID(ctx context.Context, eventID int64) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

// MockVenueRepository implements venue.Repository
type MockVenueRepository struct {
	mock.Mock
}

func (m *MockVenueRepository) Create(ctx context.Context, tx transaction.Tx, v *venue.Venue) error {
	args := m.Called(ctx, tx, v)
	return args.Error(0)
}

func (m *MockVenueRepository) GetByID(ctx context.Context, id int64) (*venue.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venue.Venue), args.Error(1)
}

func (m *MockVenueRepository) GetByName(ctx context.Context, name string) (*venue.Venue, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venue.Venue), args.Error(1)
}

func (m *MockVenueRepository) LockSectors(ctx context.Context, tx transaction.Tx, sectorIDs []int64) error {
	args := m.Called(ctx, tx, sectorIDs)
	return args.Error(0)
}

func (m *MockVenueRepository) Delete(ctx context.Context, tx transaction.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CountByEventID(ctx context.Context, eventID int64) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

// MockOutboxRepository implements outbox.Repository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Append(ctx context.Context, tx transaction.Tx, msg *outbox.Message) error {
	args := m.Called(ctx, tx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTicketCache implements redisinfra.TicketCacheInterface
type MockTicketCache struct {
	mock.Mock
}

func (m *MockTicketCache) GetAvailableCount(ctx context.Context, eventID int64) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketCache) SetAvailableCount(ctx context.Context, eventID int64, count int) error {
	args := m.Called(ctx, eventID, count)
	return args.Error(0)
}

func (m *MockTicketCache) Invalidate(ctx context.Context, eventID int64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockPublisher implements Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	args := m.Called(ctx, routingKey, messageID, body)
	return args.Error(0)
}
