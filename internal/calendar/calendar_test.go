package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/testutil"
)

func weekdayRules() Rules {
	return Rules{
		OpenWeekdays: map[time.Weekday]bool{
			time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true, time.Saturday: true,
		},
		Default: Hours{Opening: schedule.MustTimeOfDay(8, 0), Closing: schedule.MustTimeOfDay(22, 0)},
		Overrides: map[time.Weekday]Hours{
			time.Saturday: {Opening: schedule.MustTimeOfDay(9, 0), Closing: schedule.MustTimeOfDay(14, 0)},
		},
	}
}

func date(t *testing.T, raw string) schedule.LocalDate {
	t.Helper()
	d, err := schedule.ParseLocalDate(raw)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func TestResolveWeekdayDefaults(t *testing.T) {
	day := Resolve(weekdayRules(), date(t, "2024-06-03"), nil)
	if day.IsClosed {
		t.Fatalf("monday should be open")
	}
	if day.Opening.String() != "08:00" || day.Closing.String() != "22:00" {
		t.Fatalf("hours: %s-%s", day.Opening, day.Closing)
	}
	if day.Notice != "" {
		t.Fatalf("unexpected notice %q", day.Notice)
	}
}

func TestResolveWeekdayOverride(t *testing.T) {
	day := Resolve(weekdayRules(), date(t, "2024-06-08"), nil)
	if day.IsClosed || day.Opening.String() != "09:00" || day.Closing.String() != "14:00" {
		t.Fatalf("saturday override not applied: %+v", day)
	}
}

func TestResolveClosedWeekday(t *testing.T) {
	day := Resolve(weekdayRules(), date(t, "2024-06-09"), nil)
	if !day.IsClosed {
		t.Fatalf("sunday should be closed")
	}
	if day.Notice != "Closed on Sundays" {
		t.Fatalf("notice: %q", day.Notice)
	}
}

func TestResolveClosedHolidayOnOpenWeekday(t *testing.T) {
	d := date(t, "2024-06-03")
	day := Resolve(weekdayRules(), d, &Holiday{Date: d, Note: "Staff training"})
	if !day.IsClosed {
		t.Fatalf("holiday should close the day")
	}
	if day.Notice != "Closed: Staff training" {
		t.Fatalf("notice: %q", day.Notice)
	}
}

func TestResolveOpenHolidayOnClosedWeekday(t *testing.T) {
	d := date(t, "2024-06-09")
	closing := schedule.MustTimeOfDay(13, 0)
	day := Resolve(weekdayRules(), d, &Holiday{Date: d, IsOpen: true, Closing: &closing})
	if day.IsClosed {
		t.Fatalf("open holiday should open a closed weekday")
	}
	if day.Opening.String() != "08:00" || day.Closing.String() != "13:00" {
		t.Fatalf("hours: %s-%s", day.Opening, day.Closing)
	}
	if day.Notice != "Special hours on this date" {
		t.Fatalf("notice: %q", day.Notice)
	}
}

func TestDayAdmit(t *testing.T) {
	day := Resolve(weekdayRules(), date(t, "2024-06-03"), nil)
	inside := schedule.NewInterval(
		time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 22, 0, 0, 0, time.UTC),
	)
	if err := day.Admit(inside, time.UTC); err != nil {
		t.Fatalf("inside hours: %v", err)
	}

	late := schedule.NewInterval(
		time.Date(2024, 6, 3, 21, 30, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 22, 30, 0, 0, time.UTC),
	)
	err := day.Admit(late, time.UTC)
	if !errors.Is(err, schedule.ErrOutOfHours) {
		t.Fatalf("expected OUT_OF_HOURS, got %v", err)
	}

	closed := Resolve(weekdayRules(), date(t, "2024-06-09"), nil)
	err = closed.Admit(inside, time.UTC)
	if !errors.Is(err, schedule.ErrClosed) {
		t.Fatalf("expected CLOSED, got %v", err)
	}
}

func TestParseWeekdays(t *testing.T) {
	weekdays, err := ParseWeekdays("1, 2,2,6")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if FormatWeekdays(weekdays) != "1,2,6" {
		t.Fatalf("weekdays: %v", weekdays)
	}
	if _, err := ParseWeekdays("1,7"); err == nil {
		t.Fatalf("expected error for weekday 7")
	}
}

func TestResolverUsesHolidayRows(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	testutil.InsertHoliday(t, fx.DB, fx.EstablishmentID, "2024-12-25", false, "", "", "Christmas")
	ctx := context.Background()

	cal, err := NewResolver(fx.DB.Queries).LoadForCourt(ctx, fx.CourtID)
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}

	day, err := cal.Resolve(ctx, date(t, "2024-12-25"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !day.IsClosed || day.Notice != "Closed: Christmas" {
		t.Fatalf("holiday not applied: %+v", day)
	}

	day, err = cal.Resolve(ctx, date(t, "2024-12-24"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if day.IsClosed {
		t.Fatalf("regular day should be open")
	}
}

func TestResolverLoadForMissingCourt(t *testing.T) {
	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})

	_, err := NewResolver(fx.DB.Queries).LoadForCourt(context.Background(), 999)
	if !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
