package scheduler

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/notify/notifytest"
	"github.com/codr1/Courtbook/internal/testutil"
)

func TestAddJobValidation(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop() })

	if _, err := svc.AddJob(" ", "* * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", "", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("job", "*/5 * * * *", func() {}); err != nil {
		t.Fatalf("add job: %v", err)
	}
}

func TestNilServiceIsNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.AddJob("job", "* * * * *", func() {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSendBookingRemindersOncePerBooking(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	recorder := &notifytest.Recorder{}
	ctx := context.Background()
	now := testutil.UTCTime(t, "2024-06-02 10:00")

	due := testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"), "CONFIRMED")
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 12:00"), testutil.UTCTime(t, "2024-06-03 13:00"), "CONFIRMED")
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.OtherCustomerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"), "PENDING")

	queued, err := SendBookingReminders(ctx, fx.DB, recorder, 24, now)
	if err != nil {
		t.Fatalf("send reminders: %v", err)
	}
	if queued != 1 {
		t.Fatalf("expected one reminder, got %d", queued)
	}
	queued, err = SendBookingReminders(ctx, fx.DB, recorder, 24, now)
	if err != nil {
		t.Fatalf("send reminders again: %v", err)
	}
	if queued != 0 {
		t.Fatalf("expected reminder deduplicated, got %d", queued)
	}

	if got := testutil.CountRows(t, fx.DB, "SELECT COUNT(*) FROM email_outbox WHERE dedupe_key = ?", "reminder:"+strconv.FormatInt(due, 10)); got != 1 {
		t.Fatalf("expected one outbox row, got %d", got)
	}
	if got := recorder.Count(notify.KindBookingReminder); got != 1 {
		t.Fatalf("expected one reminder notification, got %d", got)
	}
}
