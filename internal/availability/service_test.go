package availability

import (
	"context"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/testutil"
)

func TestDayAvailabilityClosedHoliday(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	testutil.InsertHoliday(t, fx.DB, fx.EstablishmentID, "2024-12-25", false, "", "", "Christmas")

	svc := NewService(fx.DB, nil, testutil.FixedClock{At: testutil.UTCTime(t, "2024-12-01 09:00")})
	date, _ := schedule.ParseLocalDate("2024-12-25")

	view, err := svc.DayAvailability(context.Background(), fx.CourtID, date)
	if err != nil {
		t.Fatalf("day availability: %v", err)
	}
	if !view.IsClosed {
		t.Fatalf("expected closed day")
	}
	if view.Notice != "Closed: Christmas" {
		t.Fatalf("unexpected notice %q", view.Notice)
	}

	slots, err := svc.Slots(context.Background(), fx.CourtID, date, time.Hour)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed holiday, got %d", len(slots))
	}
}

func TestDayAvailabilityListsCommitments(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"), "CONFIRMED")
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 12:00"), testutil.UTCTime(t, "2024-06-03 13:00"), "CANCELLED")
	testutil.InsertBlock(t, fx.DB, fx.CourtID, fx.OwnerID,
		testutil.UTCTime(t, "2024-06-03 15:00"), testutil.UTCTime(t, "2024-06-03 16:00"))
	testutil.InsertMonthlyPass(t, fx.DB, fx.CourtID, fx.OtherCustomerID, "2024-06", time.Monday, "20:00", "21:00", "ACTIVE")

	svc := NewService(fx.DB, nil, testutil.FixedClock{At: testutil.UTCTime(t, "2024-06-01 09:00")})
	date, _ := schedule.ParseLocalDate("2024-06-03")

	view, err := svc.DayAvailability(context.Background(), fx.CourtID, date)
	if err != nil {
		t.Fatalf("day availability: %v", err)
	}
	if view.IsClosed || view.OpeningTime != "08:00" || view.ClosingTime != "22:00" {
		t.Fatalf("unexpected hours %+v", view)
	}
	if len(view.Bookings) != 1 || view.Bookings[0].Status != "CONFIRMED" {
		t.Fatalf("expected one confirmed booking, got %+v", view.Bookings)
	}
	if len(view.Blocks) != 2 {
		t.Fatalf("expected block plus pass occurrence, got %+v", view.Blocks)
	}
	if view.Blocks[1].MonthlyPassID == nil {
		t.Fatalf("expected pass occurrence to carry its pass id")
	}
}

func TestSlotsExcludeCommitments(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{OpeningTime: "08:00", ClosingTime: "12:00", BufferMinutes: 30})
	testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"), "CONFIRMED")

	svc := NewService(fx.DB, nil, testutil.FixedClock{At: testutil.UTCTime(t, "2024-06-01 09:00")})
	date, _ := schedule.ParseLocalDate("2024-06-03")

	slots, err := svc.Slots(context.Background(), fx.CourtID, date, time.Hour)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	got := startsOf(slots)
	want := []string{"08:00", "08:30"}
	if !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSlotsRejectsMisalignedDuration(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	svc := NewService(fx.DB, nil, nil)
	date, _ := schedule.ParseLocalDate("2024-06-03")

	_, err := svc.Slots(context.Background(), fx.CourtID, date, 45*time.Minute)
	if schedule.KindOf(err) != schedule.KindValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestDayAvailabilityUnknownCourt(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	svc := NewService(fx.DB, nil, nil)
	date, _ := schedule.ParseLocalDate("2024-06-03")

	_, err := svc.DayAvailability(context.Background(), 9999, date)
	if schedule.KindOf(err) != schedule.KindNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
