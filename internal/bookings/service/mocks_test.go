package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingserrors "lodging/internal/bookings/errors"
	"lodging/internal/bookings/validator"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/logger"
	"lodging/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ────────────────────────────────────────────────
// In-memory store backing the repository mocks
// ────────────────────────────────────────────────

const (
	userID    = "user-1"
	otherUser = "user-2"
	roomR1    = "65a1b2c3d4e5f60718293a01"
	roomR2    = "65a1b2c3d4e5f60718293a02"
	missing   = "65a1b2c3d4e5f60718293aff"
)

type memStore struct {
	mu          sync.Mutex
	enrollments map[string]*model.Enrollment
	tickets     map[string]*model.Ticket
	rooms       map[string]*model.Room
	bookings    map[string]*model.Booking
	seq         int
	reads       int
	writes      int
	readErr     error
}

func newMemStore() *memStore {
	return &memStore{
		enrollments: make(map[string]*model.Enrollment),
		tickets:     make(map[string]*model.Ticket),
		rooms:       make(map[string]*model.Room),
		bookings:    make(map[string]*model.Booking),
	}
}

func (s *memStore) addEligibleUser(user string) {
	s.addUser(user, model.TicketStatusPaid, false, true)
}

func (s *memStore) addUser(user string, status model.TicketStatus, remote, hotel bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	enrollmentID := "enr-" + user
	s.enrollments[user] = &model.Enrollment{ID: enrollmentID, UserID: user, Name: user}
	s.tickets[enrollmentID] = &model.Ticket{
		ID:           "tkt-" + user,
		EnrollmentID: enrollmentID,
		Status:       status,
		TicketType: &model.TicketType{
			ID:            "type-" + user,
			IsRemote:      remote,
			IncludesHotel: hotel,
		},
	}
}

func (s *memStore) addRoom(id string, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = &model.Room{ID: id, HotelID: "hotel-1", Name: "Room " + id[len(id)-2:], Capacity: capacity}
}

func (s *memStore) addBooking(user, room string) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &model.Booking{ID: s.nextID(), UserID: user, RoomID: room}
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) nextID() string {
	s.seq++
	return fmt.Sprintf("%024x", s.seq)
}

func (s *memStore) snapshotBookings() map[string]model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]model.Booking, len(s.bookings))
	for id, b := range s.bookings {
		snapshot[id] = *b
	}
	return snapshot
}

func (s *memStore) restoreBookings(snapshot map[string]model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = make(map[string]*model.Booking, len(snapshot))
	for id, b := range snapshot {
		restored := b
		s.bookings[id] = &restored
	}
}

func (s *memStore) roomCount(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.RoomID == room {
			n++
		}
	}
	return n
}

// ────────────────────────────────────────────────
// Repository mocks
// ────────────────────────────────────────────────

type mockEnrollmentRepository struct {
	store *memStore
}

func (m *mockEnrollmentRepository) FindWithAddressByUserID(ctx context.Context, userID string) (*model.Enrollment, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.reads++
	if m.store.readErr != nil {
		return nil, m.store.readErr
	}
	e, ok := m.store.enrollments[userID]
	if !ok {
		return nil, bookingserrors.ErrEnrollmentNotFound
	}
	return e, nil
}

type mockTicketRepository struct {
	store *memStore
}

func (m *mockTicketRepository) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*model.Ticket, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.reads++
	t, ok := m.store.tickets[enrollmentID]
	if !ok {
		return nil, bookingserrors.ErrTicketNotFound
	}
	return t, nil
}

type mockRoomRepository struct {
	store *memStore
}

func (m *mockRoomRepository) FindByID(ctx context.Context, roomID string) (*model.Room, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.reads++
	if m.store.readErr != nil {
		return nil, m.store.readErr
	}
	if !primitive.IsValidObjectID(roomID) {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, roomID)
	}
	r, ok := m.store.rooms[roomID]
	if !ok {
		return nil, bookingserrors.ErrRoomNotFound
	}
	return r, nil
}

type mockBookingRepository struct {
	store *memStore

	// afterFindByRoomID runs once the room's bookings have been read, before
	// they are returned.
	afterFindByRoomID func()
	findByUserIDFunc  func(ctx context.Context, userID string) (*model.Booking, error)
	createErr         error
	transactions      int

	// replayTransactions runs every transaction body twice, discarding the
	// first attempt's writes, the way a transient commit error does.
	replayTransactions bool
	createdIDs         []string
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.createdIDs = append(m.createdIDs, booking.ID)
	if m.createErr != nil {
		return m.createErr
	}
	for _, b := range m.store.bookings {
		if b.UserID == booking.UserID {
			return bookingserrors.ErrAlreadyBooked
		}
	}
	m.store.writes++
	now := time.Now().UTC()
	booking.ID = m.store.nextID()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	stored := *booking
	m.store.bookings[booking.ID] = &stored
	return nil
}

func (m *mockBookingRepository) FindByUserID(ctx context.Context, userID string) (*model.Booking, error) {
	if m.findByUserIDFunc != nil {
		return m.findByUserIDFunc(ctx, userID)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.reads++
	if m.store.readErr != nil {
		return nil, m.store.readErr
	}
	for _, b := range m.store.bookings {
		if b.UserID == userID {
			found := *b
			return &found, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByRoomID(ctx context.Context, roomID string) ([]*model.Booking, error) {
	m.store.mu.Lock()
	m.store.reads++
	var result []*model.Booking
	for _, b := range m.store.bookings {
		if b.RoomID == roomID {
			found := *b
			result = append(result, &found)
		}
	}
	m.store.mu.Unlock()

	if m.afterFindByRoomID != nil {
		m.afterFindByRoomID()
	}
	return result, nil
}

func (m *mockBookingRepository) Upsert(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, b := range m.store.bookings {
		if b.UserID == booking.UserID && b.ID != booking.ID {
			return nil, bookingserrors.ErrAlreadyBooked
		}
	}
	m.store.writes++
	now := time.Now().UTC()
	stored, ok := m.store.bookings[booking.ID]
	if !ok {
		stored = &model.Booking{ID: booking.ID, CreatedAt: now}
		m.store.bookings[booking.ID] = stored
	}
	stored.UserID = booking.UserID
	stored.RoomID = booking.RoomID
	stored.UpdatedAt = now
	result := *stored
	return &result, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.store.mu.Lock()
	m.transactions++
	replay := m.replayTransactions
	m.store.mu.Unlock()

	if !replay {
		return fn(ctx)
	}

	snapshot := m.store.snapshotBookings()
	if err := fn(ctx); err != nil {
		return err
	}
	m.store.restoreBookings(snapshot)
	return fn(ctx)
}

// mockRoomLockRepository keys held locks by lock ID, mapping to the holder's
// token.
type mockRoomLockRepository struct {
	mu          sync.Mutex
	held        map[string]string
	tokens      int
	acquireErr  error
	released    []string
	onContended func()
}

func newMockRoomLockRepository() *mockRoomLockRepository {
	return &mockRoomLockRepository{held: make(map[string]string)}
}

// expire drops the lock for roomID as the TTL index would.
func (m *mockRoomLockRepository) expire(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, "room_lock_"+roomID)
}

func (m *mockRoomLockRepository) Acquire(ctx context.Context, roomID string, ttl time.Duration) (*model.RoomLock, error) {
	m.mu.Lock()
	if m.acquireErr != nil {
		m.mu.Unlock()
		return nil, m.acquireErr
	}
	id := "room_lock_" + roomID
	if _, taken := m.held[id]; taken {
		onContended := m.onContended
		m.mu.Unlock()
		if onContended != nil {
			onContended()
		}
		return nil, bookingserrors.ErrRoomLocked
	}
	m.tokens++
	token := fmt.Sprintf("token-%d", m.tokens)
	m.held[id] = token
	m.mu.Unlock()
	now := time.Now().UTC()
	return &model.RoomLock{ID: id, RoomID: roomID, Token: token, ExpiresAt: now.Add(ttl), CreatedAt: now}, nil
}

func (m *mockRoomLockRepository) Release(ctx context.Context, lock *model.RoomLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lock.ID] == lock.Token {
		delete(m.held, lock.ID)
	}
	m.released = append(m.released, lock.ID)
	return nil
}

// ────────────────────────────────────────────────
// Event publisher mock
// ────────────────────────────────────────────────

type publishedEvent struct {
	kind           string
	booking        model.Booking
	previousRoomID string
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (m *mockPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{kind: "created", booking: *booking})
	return m.err
}

func (m *mockPublisher) BookingRoomChanged(ctx context.Context, booking *model.Booking, previousRoomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{kind: "room_changed", booking: *booking, previousRoomID: previousRoomID})
	return m.err
}

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

type fixture struct {
	store     *memStore
	bookings  *mockBookingRepository
	locks     *mockRoomLockRepository
	publisher *mockPublisher
	cfg       *config.Config
	service   BookingService
}

func newFixture(lockEnabled bool) *fixture {
	store := newMemStore()
	f := &fixture{
		store:     store,
		bookings:  &mockBookingRepository{store: store},
		locks:     newMockRoomLockRepository(),
		publisher: &mockPublisher{},
		cfg: &config.Config{
			Log:             logger.Discard(),
			RoomLockEnabled: lockEnabled,
			RoomLockTTL:     10 * time.Second,
		},
	}
	f.service = NewBookingService(
		f.bookings,
		&mockEnrollmentRepository{store: store},
		&mockTicketRepository{store: store},
		&mockRoomRepository{store: store},
		f.locks,
		validator.NewBookingValidator(f.cfg.Log),
		f.publisher,
		f.cfg,
	)
	return f
}
