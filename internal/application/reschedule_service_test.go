package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	bookingDomain "github.com/lagoon-stays/service-reservation/internal/domain/booking"
	rescheduleDomain "github.com/lagoon-stays/service-reservation/internal/domain/reschedule"
	"github.com/lagoon-stays/service-reservation/internal/events"
)

type rescheduleTestStack struct {
	*bookingTestStack
	service     *RescheduleService
	reschedules *fakeRescheduleRepo
}

func newRescheduleTestStack(t *testing.T, now time.Time) *rescheduleTestStack {
	t.Helper()

	base := newBookingTestStack(t, now)
	reschedules := newFakeRescheduleRepo()
	service := NewRescheduleService(reschedules, base.bookings, base.notifier, base.publisher, fixedClock{t: now}, zap.NewNop())
	return &rescheduleTestStack{
		bookingTestStack: base,
		service:          service,
		reschedules:      reschedules,
	}
}

func TestSubmitRequest(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	req := SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
		Reason:      "flight moved",
	}

	dto, err := stack.service.SubmitRequest(context.Background(), customer(userID), req)
	require.NoError(t, err)
	assert.Equal(t, string(rescheduleDomain.StatusPending), dto.Status)
	assert.Nil(t, dto.RespondedBy)

	// Submission never touches the booking itself.
	assert.Equal(t, bookingDomain.StatusApproved, bk.Status())
	assert.Equal(t, testNow.Add(48*time.Hour), bk.CheckIn())

	assert.Equal(t, []string{"Reschedule Request Submitted"}, stack.notifier.titles())
	assert.Equal(t, []string{events.RescheduleRequested}, stack.publisher.types())
}

func TestSubmitRequest_CancelledBooking(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusCancelled,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	_, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestSubmitRequest_NotOwner(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)

	bk := stack.seedBooking(t, uuid.New(), bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	_, err := stack.service.SubmitRequest(context.Background(), customer(uuid.New()), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestSubmitRequest_OnePendingPerBooking(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	req := SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	}

	_, err := stack.service.SubmitRequest(context.Background(), customer(userID), req)
	require.NoError(t, err)

	_, err = stack.service.SubmitRequest(context.Background(), customer(userID), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestSubmitRequest_InvalidDates(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	_, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(168 * time.Hour),
		NewCheckOut: testNow.Add(120 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestApproveRequest_RewritesDatesOnly(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	dto, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	adminActor := admin()
	resolved, err := stack.service.ApproveRequest(context.Background(), adminActor, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rescheduleDomain.StatusApproved), resolved.Status)
	require.NotNil(t, resolved.RespondedBy)
	assert.Equal(t, adminActor.UserID, *resolved.RespondedBy)

	// The booking moved to the proposed dates but kept its status.
	assert.Equal(t, testNow.Add(120*time.Hour), bk.CheckIn())
	assert.Equal(t, testNow.Add(168*time.Hour), bk.CheckOut())
	assert.Equal(t, bookingDomain.StatusApproved, bk.Status())
	assert.Equal(t, int64(2), bk.Version())

	assert.Contains(t, stack.notifier.titles(), "Reschedule Request Approved")
	assert.Contains(t, stack.publisher.types(), events.BookingRescheduled)
}

func TestApproveRequest_PendingBookingKeepsPending(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusPending,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	dto, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	_, err = stack.service.ApproveRequest(context.Background(), admin(), dto.ID)
	require.NoError(t, err)

	// Approval moves dates, never state: the booking still awaits admin
	// approval of the booking itself.
	assert.Equal(t, bookingDomain.StatusPending, bk.Status())
	assert.Equal(t, testNow.Add(120*time.Hour), bk.CheckIn())
}

func TestApproveRequest_AlreadyProcessed(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	dto, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	_, err = stack.service.ApproveRequest(context.Background(), admin(), dto.ID)
	require.NoError(t, err)

	_, err = stack.service.ApproveRequest(context.Background(), admin(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = stack.service.DeclineRequest(context.Background(), admin(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestApproveRequest_NotAdmin(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	dto, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	_, err = stack.service.ApproveRequest(context.Background(), customer(userID), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestDeclineRequest_KeepsBookingDates(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	originalCheckIn := testNow.Add(48 * time.Hour)
	originalCheckOut := testNow.Add(96 * time.Hour)
	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved, originalCheckIn, originalCheckOut)

	dto, err := stack.service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	resolved, err := stack.service.DeclineRequest(context.Background(), admin(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rescheduleDomain.StatusDeclined), resolved.Status)

	assert.Equal(t, originalCheckIn, bk.CheckIn())
	assert.Equal(t, originalCheckOut, bk.CheckOut())
	assert.Equal(t, bookingDomain.StatusApproved, bk.Status())

	assert.Contains(t, stack.notifier.titles(), "Reschedule Request Declined")
	assert.Contains(t, stack.publisher.types(), events.RescheduleDeclined)
}

// staleReadRescheduleRepo hands every reader a fresh pending snapshot of the
// request, modeling two admins who both loaded it before either resolution
// landed. Writes go through the underlying conditional-update fake.
type staleReadRescheduleRepo struct {
	*fakeRescheduleRepo
}

func (r *staleReadRescheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*rescheduleDomain.Request, error) {
	req, err := r.fakeRescheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rescheduleDomain.Reconstruct(req.ID(), req.BookingID(), req.NewCheckIn(), req.NewCheckOut(),
		req.Reason(), rescheduleDomain.StatusPending, nil, nil, req.CreatedAt(), req.CreatedAt()), nil
}

func newStaleReadRescheduleStack(t *testing.T, now time.Time) (*bookingTestStack, *RescheduleService) {
	t.Helper()
	base := newBookingTestStack(t, now)
	reschedules := &staleReadRescheduleRepo{fakeRescheduleRepo: newFakeRescheduleRepo()}
	service := NewRescheduleService(reschedules, base.bookings, base.notifier, base.publisher, fixedClock{t: now}, zap.NewNop())
	return base, service
}

func TestApproveRequest_ConcurrentDeclineLoses(t *testing.T) {
	base, service := newStaleReadRescheduleStack(t, testNow)
	userID := uuid.New()

	bk := base.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	dto, err := service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	_, err = service.ApproveRequest(context.Background(), admin(), dto.ID)
	require.NoError(t, err)

	// The second admin read the request while it was still pending; the
	// store lets only the first resolution through.
	_, err = service.DeclineRequest(context.Background(), admin(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.ErrorContains(t, err, "already been processed")

	// The applied dates survive the lost decline.
	assert.Equal(t, testNow.Add(120*time.Hour), bk.CheckIn())
	assert.Equal(t, testNow.Add(168*time.Hour), bk.CheckOut())
}

func TestDeclineRequest_ConcurrentApproveNeverMovesDates(t *testing.T) {
	base, service := newStaleReadRescheduleStack(t, testNow)
	userID := uuid.New()

	originalCheckIn := testNow.Add(48 * time.Hour)
	originalCheckOut := testNow.Add(96 * time.Hour)
	bk := base.seedBooking(t, userID, bookingDomain.StatusApproved, originalCheckIn, originalCheckOut)

	dto, err := service.SubmitRequest(context.Background(), customer(userID), SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	})
	require.NoError(t, err)

	_, err = service.DeclineRequest(context.Background(), admin(), dto.ID)
	require.NoError(t, err)

	_, err = service.ApproveRequest(context.Background(), admin(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	// The losing approval claimed nothing, so it never rewrote the booking.
	assert.Equal(t, originalCheckIn, bk.CheckIn())
	assert.Equal(t, originalCheckOut, bk.CheckOut())
	assert.Equal(t, int64(1), bk.Version())
}

func TestDeclineThenResubmit(t *testing.T) {
	stack := newRescheduleTestStack(t, testNow)
	userID := uuid.New()

	bk := stack.seedBooking(t, userID, bookingDomain.StatusApproved,
		testNow.Add(48*time.Hour), testNow.Add(96*time.Hour))

	req := SubmitRescheduleRequest{
		BookingID:   bk.ID(),
		NewCheckIn:  testNow.Add(120 * time.Hour),
		NewCheckOut: testNow.Add(168 * time.Hour),
	}

	first, err := stack.service.SubmitRequest(context.Background(), customer(userID), req)
	require.NoError(t, err)

	_, err = stack.service.DeclineRequest(context.Background(), admin(), first.ID)
	require.NoError(t, err)

	// Once resolved, the booking can carry a fresh pending request.
	_, err = stack.service.SubmitRequest(context.Background(), customer(userID), req)
	require.NoError(t, err)

	history, err := stack.service.ListByBooking(context.Background(), customer(userID), bk.ID())
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
