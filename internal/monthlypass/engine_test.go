package monthlypass

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/notify/notifytest"
	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/testutil"
)

type passTest struct {
	fx       testutil.Fixture
	engine   *Engine
	notifier *notifytest.Recorder
	customer authz.AuthUser
	other    authz.AuthUser
	owner    authz.AuthUser
}

func newPassTest(t *testing.T, now string) passTest {
	t.Helper()

	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	recorder := &notifytest.Recorder{}
	engine, err := NewEngine(fx.DB,
		WithClock(testutil.FixedClock{At: testutil.UTCTime(t, now)}),
		WithNotifier(recorder),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return passTest{
		fx:       fx,
		engine:   engine,
		notifier: recorder,
		customer: authz.AuthUser{ID: fx.CustomerID, Role: authz.RoleCustomer},
		other:    authz.AuthUser{ID: fx.OtherCustomerID, Role: authz.RoleCustomer},
		owner:    authz.AuthUser{ID: fx.OwnerID, Role: authz.RoleAdmin},
	}
}

func mondayEvenings(t *testing.T, courtID int64, month string) Request {
	t.Helper()
	m, err := schedule.ParseMonth(month)
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	return Request{
		CourtID:   courtID,
		Month:     m,
		Weekday:   time.Monday,
		StartTime: schedule.MustTimeOfDay(18, 0),
		EndTime:   schedule.MustTimeOfDay(19, 0),
	}
}

func TestRequestNextMonthTooEarly(t *testing.T) {
	pt := newPassTest(t, "2024-06-10 12:00")

	_, err := pt.engine.Request(context.Background(), pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	if schedule.KindOf(err) != schedule.KindValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM monthly_passes"); got != 0 {
		t.Fatalf("expected no pass rows, got %d", got)
	}
}

func TestRequestRenewalWindow(t *testing.T) {
	pt := newPassTest(t, "2024-06-20 12:00")
	ctx := context.Background()
	testutil.InsertMonthlyPass(t, pt.fx.DB, pt.fx.CourtID, pt.fx.CustomerID, "2024-06", time.Monday, "18:00", "19:00", StatusActive)

	if _, err := pt.engine.Request(ctx, pt.other, mondayEvenings(t, pt.fx.CourtID, "2024-07")); schedule.KindOf(err) != schedule.KindValidation {
		t.Fatalf("expected VALIDATION for non-holder during renewal week, got %v", err)
	}

	changed := mondayEvenings(t, pt.fx.CourtID, "2024-07")
	changed.EndTime = schedule.MustTimeOfDay(19, 30)
	if _, err := pt.engine.Request(ctx, pt.customer, changed); schedule.KindOf(err) != schedule.KindValidation {
		t.Fatalf("expected VALIDATION for a different pattern, got %v", err)
	}

	pass, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	if err != nil {
		t.Fatalf("renewal request: %v", err)
	}
	if pass.Status != StatusPending || pass.Month != "2024-07" {
		t.Fatalf("expected pending 2024-07 pass, got %+v", pass)
	}
	if pass.PriceCents != 8000 || pass.TermsSnapshot == "" {
		t.Fatalf("expected price and terms snapshot, got %+v", pass)
	}
}

func TestRequestOpenWindow(t *testing.T) {
	pt := newPassTest(t, "2024-06-25 12:00")

	if _, err := pt.engine.Request(context.Background(), pt.other, mondayEvenings(t, pt.fx.CourtID, "2024-07")); err != nil {
		t.Fatalf("expected request to be accepted in the last week, got %v", err)
	}
	if got := pt.notifier.Count(notify.KindPassRequested); got != 2 {
		t.Fatalf("expected owner and customer notified, got %d", got)
	}
	if len(pt.notifier.Emails) != 1 || pt.notifier.Emails[0].To != "owner@test.com" {
		t.Fatalf("expected one email to the owner, got %+v", pt.notifier.Emails)
	}
}

func TestRequestCurrentMonthBeforeFirstOccurrence(t *testing.T) {
	ctx := context.Background()

	pt := newPassTest(t, "2024-07-01 09:00")
	if _, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07")); err != nil {
		t.Fatalf("expected current month request before first session, got %v", err)
	}

	late := newPassTest(t, "2024-07-01 18:30")
	if _, err := late.engine.Request(ctx, late.customer, mondayEvenings(t, late.fx.CourtID, "2024-07")); schedule.KindOf(err) != schedule.KindValidation {
		t.Fatalf("expected VALIDATION once first session started, got %v", err)
	}
}

func TestRequestRejectsOtherMonths(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")

	for _, month := range []string{"2024-05", "2024-08"} {
		if _, err := pt.engine.Request(context.Background(), pt.customer, mondayEvenings(t, pt.fx.CourtID, month)); schedule.KindOf(err) != schedule.KindValidation {
			t.Fatalf("expected VALIDATION for %s, got %v", month, err)
		}
	}
}

func TestRequestChecksHoursAndConflicts(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()

	late := mondayEvenings(t, pt.fx.CourtID, "2024-07")
	late.StartTime = schedule.MustTimeOfDay(21, 30)
	late.EndTime = schedule.MustTimeOfDay(22, 30)
	if _, err := pt.engine.Request(ctx, pt.customer, late); schedule.KindOf(err) != schedule.KindOutOfHours {
		t.Fatalf("expected OUT_OF_HOURS, got %v", err)
	}

	testutil.InsertBooking(t, pt.fx.DB, pt.fx.CourtID, pt.fx.OtherCustomerID,
		testutil.UTCTime(t, "2024-07-22 18:30"), testutil.UTCTime(t, "2024-07-22 19:30"), "CONFIRMED")
	_, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	var engineErr *schedule.Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if engineErr.Kind != schedule.KindOverlapBooking || engineErr.Date.String() != "2024-07-22" {
		t.Fatalf("expected OVERLAP_BOOKING on 2024-07-22, got %s on %s", engineErr.Kind, engineErr.Date)
	}
	if !errors.Is(err, schedule.ErrSlotTaken) {
		t.Fatalf("expected overlap to match ErrSlotTaken")
	}
}

func TestRequestIsIdempotentWhilePending(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()
	req := mondayEvenings(t, pt.fx.CourtID, "2024-07")

	first, err := pt.engine.Request(ctx, pt.customer, req)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := pt.engine.Request(ctx, pt.customer, req)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the pending pass to be returned, got %d and %d", first.ID, second.ID)
	}
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM monthly_passes"); got != 1 {
		t.Fatalf("expected one pass row, got %d", got)
	}
	if got := pt.notifier.Count(notify.KindPassRequested); got != 2 {
		t.Fatalf("expected notifications only for the first request, got %d", got)
	}

	if _, err := pt.engine.Confirm(ctx, pt.owner, first.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := pt.engine.Request(ctx, pt.customer, req); schedule.KindOf(err) != schedule.KindState {
		t.Fatalf("expected STATE for an active pass, got %v", err)
	}
}

func TestConfirmMaterializesBlocks(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()

	pass, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := pt.engine.Confirm(ctx, pt.customer, pass.ID); schedule.KindOf(err) != schedule.KindPermission {
		t.Fatalf("expected PERMISSION for customer confirm, got %v", err)
	}

	active, err := pt.engine.Confirm(ctx, pt.owner, pass.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if active.Status != StatusActive || !active.MaterializedAt.Valid {
		t.Fatalf("expected materialized active pass, got %+v", active)
	}
	// Mondays 1, 8, 15, 22 and 29.
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM court_blocks WHERE monthly_pass_id = ?", pass.ID); got != 5 {
		t.Fatalf("expected five blocks, got %d", got)
	}
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM court_blocks WHERE start_time = ?", testutil.UTCTime(t, "2024-07-29 18:00")); got != 1 {
		t.Fatalf("expected block on 2024-07-29, got %d", got)
	}
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM court_blocks WHERE note LIKE 'Monthly pass%'"); got != 5 {
		t.Fatalf("expected monthly pass notes, got %d", got)
	}
	if pt.notifier.Count(notify.KindPassActivated) != 1 {
		t.Fatalf("expected activation notification, got %v", pt.notifier.Kinds())
	}

	if _, err := pt.engine.Confirm(ctx, pt.owner, pass.ID); schedule.KindOf(err) != schedule.KindState {
		t.Fatalf("expected STATE confirming twice, got %v", err)
	}
	if _, err := pt.engine.Cancel(ctx, pt.owner, pass.ID); schedule.KindOf(err) != schedule.KindState {
		t.Fatalf("expected STATE cancelling an active pass, got %v", err)
	}
}

func TestConfirmRevalidates(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()

	pass, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	testutil.InsertBooking(t, pt.fx.DB, pt.fx.CourtID, pt.fx.OtherCustomerID,
		testutil.UTCTime(t, "2024-07-15 18:00"), testutil.UTCTime(t, "2024-07-15 19:00"), "CONFIRMED")

	_, err = pt.engine.Confirm(ctx, pt.owner, pass.ID)
	var engineErr *schedule.Error
	if !errors.As(err, &engineErr) || engineErr.Kind != schedule.KindOverlapBooking || engineErr.Date.String() != "2024-07-15" {
		t.Fatalf("expected OVERLAP_BOOKING on 2024-07-15, got %v", err)
	}
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM court_blocks"); got != 0 {
		t.Fatalf("expected no blocks after failed confirm, got %d", got)
	}
	reloaded, err := pt.engine.Get(ctx, pt.customer, pass.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != StatusPending {
		t.Fatalf("expected pass still pending, got %s", reloaded.Status)
	}
}

func TestConfirmRejectsSecondPassOnSameSlot(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()

	first, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	overlapping := mondayEvenings(t, pt.fx.CourtID, "2024-07")
	overlapping.StartTime = schedule.MustTimeOfDay(18, 30)
	overlapping.EndTime = schedule.MustTimeOfDay(19, 30)
	second, err := pt.engine.Request(ctx, pt.other, overlapping)
	if err != nil {
		t.Fatalf("second request while first pending: %v", err)
	}

	if _, err := pt.engine.Confirm(ctx, pt.owner, first.ID); err != nil {
		t.Fatalf("confirm first: %v", err)
	}
	if _, err := pt.engine.Confirm(ctx, pt.owner, second.ID); schedule.KindOf(err) != schedule.KindOverlapPass {
		t.Fatalf("expected OVERLAP_PASS, got %v", err)
	}
}

func TestCancelAndRevive(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()
	req := mondayEvenings(t, pt.fx.CourtID, "2024-07")

	pass, err := pt.engine.Request(ctx, pt.customer, req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := pt.engine.Cancel(ctx, pt.other, pass.ID); schedule.KindOf(err) != schedule.KindPermission {
		t.Fatalf("expected PERMISSION for another customer, got %v", err)
	}
	cancelled, err := pt.engine.Cancel(ctx, pt.customer, pass.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if _, err := pt.engine.Cancel(ctx, pt.owner, pass.ID); schedule.KindOf(err) != schedule.KindState {
		t.Fatalf("expected STATE cancelling twice, got %v", err)
	}

	revived, err := pt.engine.Request(ctx, pt.customer, req)
	if err != nil {
		t.Fatalf("request after cancel: %v", err)
	}
	if revived.ID != pass.ID || revived.Status != StatusPending {
		t.Fatalf("expected pass %d revived as pending, got %+v", pass.ID, revived)
	}
}

func TestListAndGetVisibility(t *testing.T) {
	pt := newPassTest(t, "2024-06-28 12:00")
	ctx := context.Background()

	pass, err := pt.engine.Request(ctx, pt.customer, mondayEvenings(t, pt.fx.CourtID, "2024-07"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := pt.engine.Get(ctx, pt.other, pass.ID); schedule.KindOf(err) != schedule.KindNotFound {
		t.Fatalf("expected NOT_FOUND for another customer, got %v", err)
	}

	month, _ := schedule.ParseMonth("2024-07")
	owned, err := pt.engine.List(ctx, pt.owner, pt.fx.CourtID, month)
	if err != nil || len(owned) != 1 {
		t.Fatalf("expected owner to list one pass, got %d (%v)", len(owned), err)
	}
	mine, err := pt.engine.List(ctx, pt.customer, 0, schedule.Month{})
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected customer to list one pass, got %d (%v)", len(mine), err)
	}
	theirs, err := pt.engine.List(ctx, pt.other, 0, schedule.Month{})
	if err != nil || len(theirs) != 0 {
		t.Fatalf("expected other customer to list none, got %d (%v)", len(theirs), err)
	}
}

func TestExpireStale(t *testing.T) {
	pt := newPassTest(t, "2024-08-02 12:00")
	stale := testutil.InsertMonthlyPass(t, pt.fx.DB, pt.fx.CourtID, pt.fx.CustomerID, "2024-07", time.Monday, "18:00", "19:00", StatusPending)
	testutil.InsertMonthlyPass(t, pt.fx.DB, pt.fx.CourtID, pt.fx.OtherCustomerID, "2024-08", time.Monday, "18:00", "19:00", StatusPending)

	expired, err := pt.engine.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected one expired pass, got %d", expired)
	}
	if got := testutil.CountRows(t, pt.fx.DB, "SELECT COUNT(*) FROM monthly_passes WHERE id = ? AND status = 'CANCELLED'", stale); got != 1 {
		t.Fatalf("expected stale pass cancelled")
	}
}

func TestExpireStaleUsesEstablishmentMonth(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		now      string
		expired  int
	}{
		// 2024-08-01 01:00 in Auckland.
		{name: "east of UTC already in August", timezone: "Pacific/Auckland", now: "2024-07-31 13:00", expired: 1},
		// 2024-07-31 20:00 in Los Angeles.
		{name: "west of UTC still in July", timezone: "America/Los_Angeles", now: "2024-08-01 03:00", expired: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := testutil.NewFixture(t, testutil.EstablishmentOptions{Timezone: tt.timezone})
			engine, err := NewEngine(fx.DB, WithClock(testutil.FixedClock{At: testutil.UTCTime(t, tt.now)}))
			if err != nil {
				t.Fatalf("new engine: %v", err)
			}
			id := testutil.InsertMonthlyPass(t, fx.DB, fx.CourtID, fx.CustomerID, "2024-07", time.Monday, "18:00", "19:00", StatusPending)

			expired, err := engine.ExpireStale(context.Background())
			if err != nil {
				t.Fatalf("expire: %v", err)
			}
			if expired != tt.expired {
				t.Fatalf("expected %d expired passes, got %d", tt.expired, expired)
			}
			want := StatusPending
			if tt.expired == 1 {
				want = StatusCancelled
			}
			if got := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM monthly_passes WHERE id = ? AND status = ?", id, want); got != 1 {
				t.Fatalf("expected pass %d to be %s", id, want)
			}
		})
	}
}
