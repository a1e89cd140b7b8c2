package blocks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/booking"
	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/testutil"
)

func newTestEngine(t *testing.T, fx testutil.Fixture, now string) *Engine {
	t.Helper()

	engine, err := NewEngine(fx.DB, WithClock(testutil.FixedClock{At: testutil.UTCTime(t, now)}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func mustDate(t *testing.T, raw string) schedule.LocalDate {
	t.Helper()
	d, err := schedule.ParseLocalDate(raw)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func TestCreateSeriesIsAllOrNothing(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	engine := newTestEngine(t, fx, "2024-07-01 09:00")
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-08-14 07:00"), testutil.UTCTime(t, "2024-08-14 08:00"), "CONFIRMED")

	_, err := engine.CreateSeries(context.Background(), authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}, SeriesRequest{
		CourtID:   fx.CourtID,
		StartDate: mustDate(t, "2024-08-01"),
		EndDate:   mustDate(t, "2024-08-31"),
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		StartTime: schedule.MustTimeOfDay(7, 0),
		EndTime:   schedule.MustTimeOfDay(8, 0),
		Note:      "Coaching",
	})
	var engineErr *schedule.Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if engineErr.Kind != schedule.KindOverlapBooking || engineErr.Date.String() != "2024-08-14" {
		t.Fatalf("expected OVERLAP_BOOKING on 2024-08-14, got %s on %s", engineErr.Kind, engineErr.Date)
	}
	if got := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM court_blocks"); got != 0 {
		t.Fatalf("expected zero blocks, got %d", got)
	}
}

func TestCreateSeriesRacesBookingForSameSlot(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	clock := testutil.FixedClock{At: testutil.UTCTime(t, "2024-07-01 09:00")}
	blockEngine := newTestEngine(t, fx, "2024-07-01 09:00")
	bookingEngine, err := booking.NewEngine(fx.DB, booking.WithClock(clock))
	if err != nil {
		t.Fatalf("new booking engine: %v", err)
	}
	series := SeriesRequest{
		CourtID:   fx.CourtID,
		StartDate: mustDate(t, "2024-08-01"),
		EndDate:   mustDate(t, "2024-08-31"),
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		StartTime: schedule.MustTimeOfDay(10, 0),
		EndTime:   schedule.MustTimeOfDay(11, 0),
	}
	bookingReq := booking.Request{
		CourtID: fx.CourtID,
		Start:   testutil.UTCTime(t, "2024-08-14 10:00"),
		End:     testutil.UTCTime(t, "2024-08-14 11:00"),
	}

	var (
		wg                    sync.WaitGroup
		seriesErr, bookingErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, seriesErr = blockEngine.CreateSeries(context.Background(), authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}, series)
	}()
	go func() {
		defer wg.Done()
		_, bookingErr = bookingEngine.Create(context.Background(), booking.Settings{},
			authz.AuthUser{ID: fx.CustomerID, Role: authz.RoleCustomer}, bookingReq)
	}()
	wg.Wait()

	blockCount := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM court_blocks")
	bookingCount := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM bookings")
	switch {
	case seriesErr == nil && bookingErr != nil:
		if schedule.KindOf(bookingErr) != schedule.KindOverlapBlock {
			t.Fatalf("expected OVERLAP_BLOCK for the booking, got %v", bookingErr)
		}
		if blockCount != 8 || bookingCount != 0 {
			t.Fatalf("expected 8 blocks and no booking, got %d blocks %d bookings", blockCount, bookingCount)
		}
	case bookingErr == nil && seriesErr != nil:
		if schedule.KindOf(seriesErr) != schedule.KindOverlapBooking {
			t.Fatalf("expected OVERLAP_BOOKING for the series, got %v", seriesErr)
		}
		if blockCount != 0 || bookingCount != 1 {
			t.Fatalf("expected one booking and no blocks, got %d blocks %d bookings", blockCount, bookingCount)
		}
	default:
		t.Fatalf("expected exactly one admission, got series=%v booking=%v", seriesErr, bookingErr)
	}
}

func TestCreateSeriesCreatesMatchingDates(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	engine := newTestEngine(t, fx, "2024-07-01 09:00")

	result, err := engine.CreateSeries(context.Background(), authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}, SeriesRequest{
		CourtID:   fx.CourtID,
		StartDate: mustDate(t, "2024-08-01"),
		EndDate:   mustDate(t, "2024-08-31"),
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		StartTime: schedule.MustTimeOfDay(7, 0),
		EndTime:   schedule.MustTimeOfDay(8, 0),
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	// Mondays 5,12,19,26 and Wednesdays 7,14,21,28.
	if len(result.IDs) != 8 || result.SeriesID == "" {
		t.Fatalf("expected eight blocks in one series, got %+v", result)
	}
	if got := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM court_blocks WHERE series_id = ?", result.SeriesID); got != 8 {
		t.Fatalf("expected eight stored blocks, got %d", got)
	}
}

func TestCreateSeriesValidation(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	engine := newTestEngine(t, fx, "2024-07-01 09:00")
	owner := authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}
	base := SeriesRequest{
		CourtID:   fx.CourtID,
		StartDate: mustDate(t, "2024-08-01"),
		EndDate:   mustDate(t, "2024-08-31"),
		Weekdays:  []time.Weekday{time.Monday},
		StartTime: schedule.MustTimeOfDay(7, 0),
		EndTime:   schedule.MustTimeOfDay(8, 0),
	}

	tests := []struct {
		name   string
		mutate func(*SeriesRequest)
	}{
		{name: "reversed range", mutate: func(r *SeriesRequest) { r.EndDate = mustDate(t, "2024-07-31") }},
		{name: "range too long", mutate: func(r *SeriesRequest) { r.EndDate = mustDate(t, "2025-08-31") }},
		{name: "no weekdays", mutate: func(r *SeriesRequest) { r.Weekdays = nil }},
		{name: "no matching dates", mutate: func(r *SeriesRequest) {
			r.EndDate = mustDate(t, "2024-08-02")
			r.Weekdays = []time.Weekday{time.Sunday}
		}},
		{name: "misaligned", mutate: func(r *SeriesRequest) { r.EndTime = schedule.MustTimeOfDay(8, 15) }},
		{name: "reversed times", mutate: func(r *SeriesRequest) { r.EndTime = schedule.MustTimeOfDay(6, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := engine.CreateSeries(context.Background(), owner, req)
			if schedule.KindOf(err) != schedule.KindValidation {
				t.Fatalf("expected VALIDATION, got %v", err)
			}
		})
	}
}

func TestCreateRequiresOwner(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	engine := newTestEngine(t, fx, "2024-06-01 09:00")
	otherAdmin := testutil.InsertUser(t, fx.DB, "other-admin@test.com", "ADMIN")
	req := Request{
		CourtID: fx.CourtID,
		Start:   testutil.UTCTime(t, "2024-06-03 10:00"),
		End:     testutil.UTCTime(t, "2024-06-03 11:00"),
	}

	for _, actor := range []authz.AuthUser{
		{ID: fx.CustomerID, Role: authz.RoleCustomer},
		{ID: otherAdmin, Role: authz.RoleAdmin},
	} {
		if _, err := engine.Create(context.Background(), actor, req); schedule.KindOf(err) != schedule.KindPermission {
			t.Fatalf("expected PERMISSION for user %d, got %v", actor.ID, err)
		}
	}

	if _, err := engine.Create(context.Background(), authz.AuthUser{ID: 99, Role: authz.RoleSysadmin}, req); err != nil {
		t.Fatalf("expected sysadmin to create block, got %v", err)
	}
}

func TestCreateDistinguishesConflictKinds(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{BufferMinutes: 30})
	engine := newTestEngine(t, fx, "2024-06-01 09:00")
	owner := authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}
	ctx := context.Background()
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"), "CONFIRMED")
	testutil.InsertBlock(t, fx.DB, fx.CourtID, fx.OwnerID,
		testutil.UTCTime(t, "2024-06-03 14:00"), testutil.UTCTime(t, "2024-06-03 15:00"))

	_, err := engine.Create(ctx, owner, Request{
		CourtID: fx.CourtID,
		Start:   testutil.UTCTime(t, "2024-06-03 11:00"),
		End:     testutil.UTCTime(t, "2024-06-03 12:00"),
	})
	if schedule.KindOf(err) != schedule.KindOverlapBooking {
		t.Fatalf("expected OVERLAP_BOOKING within buffer, got %v", err)
	}

	_, err = engine.Create(ctx, owner, Request{
		CourtID: fx.CourtID,
		Start:   testutil.UTCTime(t, "2024-06-03 14:30"),
		End:     testutil.UTCTime(t, "2024-06-03 15:30"),
	})
	if schedule.KindOf(err) != schedule.KindOverlapBlock {
		t.Fatalf("expected OVERLAP_BLOCK, got %v", err)
	}
}

func TestCreateRepeatWeeks(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	engine := newTestEngine(t, fx, "2024-06-01 09:00")
	owner := authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}

	result, err := engine.Create(context.Background(), owner, Request{
		CourtID:     fx.CourtID,
		Start:       testutil.UTCTime(t, "2024-06-03 10:00"),
		End:         testutil.UTCTime(t, "2024-06-03 11:00"),
		RepeatWeeks: 2,
		Note:        "Resurfacing",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(result.IDs) != 3 {
		t.Fatalf("expected three blocks, got %+v", result)
	}
	if got := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM court_blocks WHERE start_time = ?", testutil.UTCTime(t, "2024-06-17 10:00")); got != 1 {
		t.Fatalf("expected block on 2024-06-17, got %d", got)
	}
}

func TestCreateRepeatWeeksRejectsSelfOverlap(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	engine := newTestEngine(t, fx, "2024-07-01 09:00")
	owner := authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}

	_, err := engine.Create(context.Background(), owner, Request{
		CourtID:     fx.CourtID,
		Start:       testutil.UTCTime(t, "2024-08-01 07:00"),
		End:         testutil.UTCTime(t, "2024-08-10 07:00"),
		RepeatWeeks: 1,
		Note:        "Renovation",
	})
	var engineErr *schedule.Error
	if !errors.As(err, &engineErr) || engineErr.Kind != schedule.KindValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if engineErr.Date.String() != "2024-08-08" {
		t.Fatalf("expected overlap reported on 2024-08-08, got %s", engineErr.Date)
	}
	if got := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM court_blocks"); got != 0 {
		t.Fatalf("expected zero blocks, got %d", got)
	}

	// A block shorter than a week still repeats.
	result, err := engine.Create(context.Background(), owner, Request{
		CourtID:     fx.CourtID,
		Start:       testutil.UTCTime(t, "2024-08-01 07:00"),
		End:         testutil.UTCTime(t, "2024-08-08 07:00"),
		RepeatWeeks: 1,
	})
	if err != nil {
		t.Fatalf("create touching weeks: %v", err)
	}
	if len(result.IDs) != 2 {
		t.Fatalf("expected two blocks, got %+v", result)
	}
}

type freedRecorder struct {
	calls int
}

func (f *freedRecorder) NotifyFreed(context.Context, int64, schedule.Interval) {
	f.calls++
}

func TestDeleteBlock(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	freed := &freedRecorder{}
	engine, err := NewEngine(fx.DB, WithFreedListener(freed))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()
	blockID := testutil.InsertBlock(t, fx.DB, fx.CourtID, fx.OwnerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"))

	if err := engine.Delete(ctx, authz.AuthUser{ID: fx.CustomerID, Role: authz.RoleCustomer}, blockID); schedule.KindOf(err) != schedule.KindPermission {
		t.Fatalf("expected PERMISSION, got %v", err)
	}
	if err := engine.Delete(ctx, authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}, blockID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if freed.calls != 1 {
		t.Fatalf("expected freed listener called once, got %d", freed.calls)
	}
	if err := engine.Delete(ctx, authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin}, blockID); schedule.KindOf(err) != schedule.KindNotFound {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}
}
