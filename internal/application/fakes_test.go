package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lagoon-stays/service-reservation/internal/domain"
	bookingDomain "github.com/lagoon-stays/service-reservation/internal/domain/booking"
	feedbackDomain "github.com/lagoon-stays/service-reservation/internal/domain/feedback"
	notificationDomain "github.com/lagoon-stays/service-reservation/internal/domain/notification"
	rescheduleDomain "github.com/lagoon-stays/service-reservation/internal/domain/reschedule"
	unitDomain "github.com/lagoon-stays/service-reservation/internal/domain/unit"
	"github.com/lagoon-stays/service-reservation/internal/events"
)

// fixedClock returns a constant time, so tests control "now" exactly.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// sentNotification records one Emit call on the fake notifier.
type sentNotification struct {
	UserID   uuid.UUID
	Title    string
	Message  string
	Category notificationDomain.Category
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Emit(_ context.Context, userID uuid.UUID, title, message string, category notificationDomain.Category) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Title: title, Message: message, Category: category})
}

func (n *fakeNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Title
	}
	return out
}

type publishedEvent struct {
	Topic string
	Key   string
	Event *events.CloudEvent
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event *events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.published))
	for i, e := range p.published {
		out[i] = e.Event.Type
	}
	return out
}

// fakeBookingRepo keeps aggregates in memory. Completed status is tracked in
// a separate set so MarkCompleted behaves like the conditional UPDATE in the
// real store: exactly one caller sees fired=true.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*bookingDomain.Booking
	completed map[uuid.UUID]bool

	markCompletedCalls int
	// markCompletedFired, when set, overrides the fired result to simulate
	// losing the conditional-write race.
	markCompletedFired *bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:  make(map[uuid.UUID]*bookingDomain.Booking),
		completed: make(map[uuid.UUID]bool),
	}
}

func (r *fakeBookingRepo) put(bk *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = bk
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UserID() == userID {
			out = append(out, bk)
		}
	}
	sortBookings(out)
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	sortBookings(out)
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, unitID uuid.UUID, checkIn, checkOut time.Time) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UnitID() != unitID {
			continue
		}
		if bk.Status() != bookingDomain.StatusPending && bk.Status() != bookingDomain.StatusApproved {
			continue
		}
		if bk.CheckIn().Before(checkOut) && bk.CheckOut().After(checkIn) {
			out = append(out, bk)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64)
	for _, bk := range r.bookings {
		out[string(bk.Status())]++
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByYear(_ context.Context) (map[int]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]int64)
	for _, bk := range r.bookings {
		out[bk.CheckIn().Year()]++
	}
	return out, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) MarkCompleted(_ context.Context, id uuid.UUID, _ time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCompletedCalls++
	if r.markCompletedFired != nil {
		return *r.markCompletedFired, nil
	}
	if r.completed[id] {
		return false, nil
	}
	r.completed[id] = true
	return true, nil
}

func sortBookings(bks []*bookingDomain.Booking) {
	sort.Slice(bks, func(i, j int) bool {
		return bks[i].CreatedAt().After(bks[j].CreatedAt())
	})
}

type fakeUnitRepo struct {
	mu    sync.Mutex
	units map[uuid.UUID]*unitDomain.Unit
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{units: make(map[uuid.UUID]*unitDomain.Unit)}
}

func (r *fakeUnitRepo) put(u *unitDomain.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.ID()] = u
}

func (r *fakeUnitRepo) FindByID(_ context.Context, id uuid.UUID) (*unitDomain.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return nil, domain.NewNotFoundError("unit", id.String())
	}
	return u, nil
}

func (r *fakeUnitRepo) ListAll(_ context.Context, page, limit int) ([]*unitDomain.Unit, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*unitDomain.Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUnitRepo) Save(_ context.Context, u *unitDomain.Unit) error {
	r.put(u)
	return nil
}

func (r *fakeUnitRepo) Update(_ context.Context, u *unitDomain.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[u.ID()]; !ok {
		return domain.NewNotFoundError("unit", u.ID().String())
	}
	r.units[u.ID()] = u
	return nil
}

func (r *fakeUnitRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[id]; !ok {
		return domain.NewNotFoundError("unit", id.String())
	}
	delete(r.units, id)
	return nil
}

// fakeRescheduleRepo enforces the one-pending-request-per-booking rule in
// Save, like the partial unique index does in the real store. Resolution is
// tracked in a separate set so Update behaves like the conditional UPDATE:
// exactly one resolution per request takes effect.
type fakeRescheduleRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*rescheduleDomain.Request
	resolved map[uuid.UUID]bool
}

func newFakeRescheduleRepo() *fakeRescheduleRepo {
	return &fakeRescheduleRepo{
		requests: make(map[uuid.UUID]*rescheduleDomain.Request),
		resolved: make(map[uuid.UUID]bool),
	}
}

func (r *fakeRescheduleRepo) FindByID(_ context.Context, id uuid.UUID) (*rescheduleDomain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("reschedule request", id.String())
	}
	return req, nil
}

func (r *fakeRescheduleRepo) FindByBooking(_ context.Context, bookingID uuid.UUID) ([]*rescheduleDomain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*rescheduleDomain.Request
	for _, req := range r.requests {
		if req.BookingID() == bookingID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeRescheduleRepo) ListAll(_ context.Context, page, limit int) ([]*rescheduleDomain.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*rescheduleDomain.Request, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, int64(len(out)), nil
}

func (r *fakeRescheduleRepo) Save(_ context.Context, req *rescheduleDomain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.BookingID() == req.BookingID() && existing.Status() == rescheduleDomain.StatusPending {
			return domain.NewConflictError("you already have a pending reschedule request for this booking")
		}
	}
	r.requests[req.ID()] = req
	return nil
}

func (r *fakeRescheduleRepo) Update(_ context.Context, req *rescheduleDomain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID()]; !ok {
		return domain.NewNotFoundError("reschedule request", req.ID().String())
	}
	if r.resolved[req.ID()] {
		return domain.NewConflictError("this reschedule request has already been processed")
	}
	r.resolved[req.ID()] = true
	r.requests[req.ID()] = req
	return nil
}

// fakeFeedbackRepo enforces the one-feedback-per-booking rule in Save, like
// the unique index does in the real store.
type fakeFeedbackRepo struct {
	mu        sync.Mutex
	byBooking map[uuid.UUID]*feedbackDomain.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{byBooking: make(map[uuid.UUID]*feedbackDomain.Feedback)}
}

func (r *fakeFeedbackRepo) put(fb *feedbackDomain.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byBooking[fb.BookingID()] = fb
}

func (r *fakeFeedbackRepo) FindByBooking(_ context.Context, bookingID uuid.UUID) (*feedbackDomain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domain.NewNotFoundError("feedback for booking", bookingID.String())
	}
	return fb, nil
}

func (r *fakeFeedbackRepo) Save(_ context.Context, fb *feedbackDomain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byBooking[fb.BookingID()]; ok {
		return domain.NewConflictError("feedback has already been submitted for this booking")
	}
	r.byBooking[fb.BookingID()] = fb
	return nil
}

func (r *fakeFeedbackRepo) StatsForYear(_ context.Context, year int) (*feedbackDomain.YearlyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	monthCount := make(map[int]int64)
	monthSum := make(map[int]int64)
	var total, sum int64
	for _, fb := range r.byBooking {
		if fb.CreatedAt().Year() != year {
			continue
		}
		distribution[fb.Rating()]++
		total++
		sum += int64(fb.Rating())
		m := int(fb.CreatedAt().Month())
		monthCount[m]++
		monthSum[m] += int64(fb.Rating())
	}
	var average float64
	if total > 0 {
		average = float64(sum) / float64(total)
	}
	// Like the grouped query: only months with feedback, ascending.
	var monthly []feedbackDomain.MonthStats
	for m := 1; m <= 12; m++ {
		if monthCount[m] == 0 {
			continue
		}
		monthly = append(monthly, feedbackDomain.MonthStats{
			Month:         m,
			AverageRating: float64(monthSum[m]) / float64(monthCount[m]),
			Count:         monthCount[m],
		})
	}
	return &feedbackDomain.YearlyStats{
		Year:          year,
		AverageRating: average,
		TotalFeedback: total,
		Distribution:  distribution,
		Monthly:       monthly,
	}, nil
}
