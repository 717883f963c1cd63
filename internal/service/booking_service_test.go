package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu          sync.Mutex
	views       map[int64]*models.ItemView
	invalidated []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{views: make(map[int64]*models.ItemView)}
}

func (c *fakeCache) GetItemView(ctx context.Context, itemID int64) (*models.ItemView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views[itemID], nil
}

func (c *fakeCache) SetItemView(ctx context.Context, view *models.ItemView, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view.ID] = view
	return nil
}

func (c *fakeCache) InvalidateItem(ctx context.Context, itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, itemID)
	c.invalidated = append(c.invalidated, itemID)
	return nil
}

func newBookingService(users *mockUsers, items *mockItems, bookings *mockBookings, cache domain.ViewCache) *BookingService {
	return NewBookingService(users, items, bookings, cache, nil, testLogger())
}

func TestBookingCreate(t *testing.T) {
	ctx := context.Background()
	booker := &models.User{ID: 2, Name: "Booker"}
	item := &models.Item{ID: 10, OwnerID: 1, Available: true}
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	users := new(mockUsers)
	items := new(mockItems)
	bookings := new(mockBookings)
	users.On("GetUser", ctx, int64(2)).Return(booker, nil)
	items.On("GetItem", ctx, int64(10)).Return(item, nil)
	bookings.On("HasApprovedOverlap", ctx, int64(10), start, end).Return(false, nil)
	bookings.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 77
		}).Return(nil)

	svc := newBookingService(users, items, bookings, nil)
	got, err := svc.Create(ctx, 10, start, end, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(77), got.ID)
	assert.Equal(t, models.StatusWaiting, got.Status)
	bookings.AssertExpectations(t)
}

func TestBookingCreateBookerNotFound(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("GetUser", ctx, int64(99)).Return(nil, domain.ErrNotFound)

	svc := newBookingService(users, new(mockItems), new(mockBookings), nil)
	_, err := svc.Create(ctx, 10, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingCreateInvalidInterval(t *testing.T) {
	ctx := context.Background()
	booker := &models.User{ID: 2}
	item := &models.Item{ID: 10, OwnerID: 1, Available: true}

	users := new(mockUsers)
	items := new(mockItems)
	users.On("GetUser", ctx, int64(2)).Return(booker, nil)
	items.On("GetItem", ctx, int64(10)).Return(item, nil)

	svc := newBookingService(users, items, new(mockBookings), nil)

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.Create(ctx, 10, start, start, 2)
	assert.ErrorIs(t, err, domain.ErrInvalid, "start == end")

	_, err = svc.Create(ctx, 10, start.Add(time.Hour), start, 2)
	assert.ErrorIs(t, err, domain.ErrInvalid, "start after end")

	_, err = svc.Create(ctx, 10, time.Now().Add(-time.Hour), start, 2)
	assert.ErrorIs(t, err, domain.ErrInvalid, "start in the past")
}

func TestBookingCreateUnavailableItem(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	items := new(mockItems)
	users.On("GetUser", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	items.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: false}, nil)

	svc := newBookingService(users, items, new(mockBookings), nil)
	_, err := svc.Create(ctx, 10, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), 2)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestBookingCreateSelfBooking(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	items := new(mockItems)
	users.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	items.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: true}, nil)

	svc := newBookingService(users, items, new(mockBookings), nil)
	_, err := svc.Create(ctx, 10, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), 1)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestBookingCreateOverlapConflict(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	users := new(mockUsers)
	items := new(mockItems)
	bookings := new(mockBookings)
	users.On("GetUser", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	items.On("GetItem", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1, Available: true}, nil)
	bookings.On("HasApprovedOverlap", ctx, int64(10), start, end).Return(true, nil)

	svc := newBookingService(users, items, bookings, nil)
	_, err := svc.Create(ctx, 10, start, end, 2)
	assert.ErrorIs(t, err, domain.ErrConflict)
	bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func decideFixture(t *testing.T, status models.BookingStatus) (*mockUsers, *mockItems, *mockBookings, *models.Booking) {
	t.Helper()
	booking := &models.Booking{ID: 5, ItemID: 10, BookerID: 2, Status: status}
	item := &models.Item{ID: 10, OwnerID: 1, Available: true}

	users := new(mockUsers)
	items := new(mockItems)
	bookings := new(mockBookings)
	users.On("GetUser", mock.Anything, mock.AnythingOfType("int64")).Return(&models.User{ID: 1}, nil)
	items.On("GetItem", mock.Anything, int64(10)).Return(item, nil)
	bookings.On("GetBooking", mock.Anything, int64(5)).Return(booking, nil)
	return users, items, bookings, booking
}

func TestBookingDecideApprove(t *testing.T) {
	users, items, bookings, _ := decideFixture(t, models.StatusWaiting)
	bookings.On("DecideBooking", mock.Anything, int64(5), models.StatusApproved).Return(true, nil)

	cache := newFakeCache()
	svc := newBookingService(users, items, bookings, cache)
	got, err := svc.Decide(context.Background(), 5, 1, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Contains(t, cache.invalidated, int64(10))
}

func TestBookingDecideReject(t *testing.T) {
	users, items, bookings, _ := decideFixture(t, models.StatusWaiting)
	bookings.On("DecideBooking", mock.Anything, int64(5), models.StatusRejected).Return(true, nil)

	svc := newBookingService(users, items, bookings, nil)
	got, err := svc.Decide(context.Background(), 5, 1, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
}

func TestBookingDecideByBookerForbidden(t *testing.T) {
	users, items, bookings, _ := decideFixture(t, models.StatusWaiting)

	svc := newBookingService(users, items, bookings, nil)
	_, err := svc.Decide(context.Background(), 5, 2, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	bookings.AssertNotCalled(t, "DecideBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingDecideByStrangerNotFound(t *testing.T) {
	users, items, bookings, _ := decideFixture(t, models.StatusWaiting)

	svc := newBookingService(users, items, bookings, nil)
	_, err := svc.Decide(context.Background(), 5, 42, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingDecideAlreadyDecided(t *testing.T) {
	for _, status := range []models.BookingStatus{models.StatusApproved, models.StatusRejected} {
		users, items, bookings, _ := decideFixture(t, status)

		svc := newBookingService(users, items, bookings, nil)
		_, err := svc.Decide(context.Background(), 5, 1, true)
		assert.ErrorIs(t, err, domain.ErrInvalid, "status %s", status)
	}
}

func TestBookingDecideLostRace(t *testing.T) {
	users, items, bookings, _ := decideFixture(t, models.StatusWaiting)
	bookings.On("DecideBooking", mock.Anything, int64(5), models.StatusApproved).Return(false, nil)

	svc := newBookingService(users, items, bookings, nil)
	_, err := svc.Decide(context.Background(), 5, 1, true)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestBookingGetByID(t *testing.T) {
	users, items, bookings, booking := decideFixture(t, models.StatusWaiting)

	svc := newBookingService(users, items, bookings, nil)

	got, err := svc.GetByID(context.Background(), 5, 2) // booker
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	got, err = svc.GetByID(context.Background(), 5, 1) // owner
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetByID(context.Background(), 5, 42) // stranger
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingList(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	bookings := new(mockBookings)
	users.On("GetUser", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	expected := []models.Booking{{ID: 3}, {ID: 1}}
	bookings.On("ListBookings", ctx, int64(2), models.RoleBooker, models.BucketFuture,
		mock.AnythingOfType("time.Time"), 0, 20).Return(expected, nil)

	svc := newBookingService(users, new(mockItems), bookings, nil)
	got, err := svc.List(ctx, 2, models.RoleBooker, models.BucketFuture, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestBookingListUnknownUser(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("GetUser", ctx, int64(7)).Return(nil, domain.ErrNotFound)

	svc := newBookingService(users, new(mockItems), new(mockBookings), nil)
	_, err := svc.List(ctx, 7, models.RoleOwner, models.BucketAll, 0, 20)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
