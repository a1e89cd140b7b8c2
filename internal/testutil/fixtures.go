package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
)

type EstablishmentOptions struct {
	Name                 string
	Timezone             string
	OpenWeekdays         string
	OpeningTime          string
	ClosingTime          string
	BufferMinutes        int64
	RequiresPayment      bool
	RequiresConfirmation bool
}

type CourtOptions struct {
	Name              string
	Inactive          bool
	PricePerHourCents int64
	DiscountPercent   int64
	MonthlyPriceCents int64
	MonthlyTerms      string
}

// Fixture is an establishment with one court, its owner and two customers.
type Fixture struct {
	DB              *db.DB
	OwnerID         int64
	CustomerID      int64
	OtherCustomerID int64
	EstablishmentID int64
	CourtID         int64
}

// NewFixture seeds an establishment open every day 08:00-22:00 in UTC unless
// opts say otherwise, with a court priced at 20.00 per hour and 80.00 per month.
func NewFixture(t *testing.T, opts EstablishmentOptions) Fixture {
	t.Helper()

	database := NewTestDB(t)
	ownerID := InsertUser(t, database, "owner@test.com", "ADMIN")
	customerID := InsertUser(t, database, "customer@test.com", "CUSTOMER")
	otherID := InsertUser(t, database, "other@test.com", "CUSTOMER")
	establishmentID := InsertEstablishment(t, database, ownerID, opts)
	courtID := InsertCourt(t, database, establishmentID, CourtOptions{
		Name:              "Court 1",
		PricePerHourCents: 2000,
		MonthlyPriceCents: 8000,
		MonthlyTerms:      "Non-refundable once active.",
	})

	return Fixture{
		DB:              database,
		OwnerID:         ownerID,
		CustomerID:      customerID,
		OtherCustomerID: otherID,
		EstablishmentID: establishmentID,
		CourtID:         courtID,
	}
}

func InsertUser(t *testing.T, database *db.DB, email, role string) int64 {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		"INSERT INTO users (email, first_name, last_name, role) VALUES (?, ?, ?, ?)",
		email,
		"Test",
		"User",
		role,
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	return id
}

func InsertEstablishment(t *testing.T, database *db.DB, ownerID int64, opts EstablishmentOptions) int64 {
	t.Helper()

	if opts.Name == "" {
		opts.Name = "Main Club"
	}
	if opts.Timezone == "" {
		opts.Timezone = "UTC"
	}
	if opts.OpenWeekdays == "" {
		opts.OpenWeekdays = "0,1,2,3,4,5,6"
	}
	if opts.OpeningTime == "" {
		opts.OpeningTime = "08:00"
	}
	if opts.ClosingTime == "" {
		opts.ClosingTime = "22:00"
	}

	result, err := database.ExecContext(context.Background(),
		`INSERT INTO establishments (
			owner_user_id, name, timezone, open_weekdays, opening_time, closing_time,
			booking_buffer_minutes, requires_payment, requires_confirmation
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID,
		opts.Name,
		opts.Timezone,
		opts.OpenWeekdays,
		opts.OpeningTime,
		opts.ClosingTime,
		opts.BufferMinutes,
		opts.RequiresPayment,
		opts.RequiresConfirmation,
	)
	if err != nil {
		t.Fatalf("insert establishment: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("establishment id: %v", err)
	}
	return id
}

func InsertCourt(t *testing.T, database *db.DB, establishmentID int64, opts CourtOptions) int64 {
	t.Helper()

	if opts.Name == "" {
		opts.Name = "Court"
	}
	monthlyPrice := sql.NullInt64{Int64: opts.MonthlyPriceCents, Valid: opts.MonthlyPriceCents > 0}
	monthlyTerms := sql.NullString{String: opts.MonthlyTerms, Valid: opts.MonthlyTerms != ""}

	result, err := database.ExecContext(context.Background(),
		`INSERT INTO courts (
			establishment_id, name, is_active, price_per_hour_cents,
			discount_over_90_min_percent, monthly_price_cents, monthly_terms
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		establishmentID,
		opts.Name,
		!opts.Inactive,
		opts.PricePerHourCents,
		opts.DiscountPercent,
		monthlyPrice,
		monthlyTerms,
	)
	if err != nil {
		t.Fatalf("insert court: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("court id: %v", err)
	}
	return id
}

func InsertBooking(t *testing.T, database *db.DB, courtID, customerID int64, start, end time.Time, status string) int64 {
	t.Helper()

	now := time.Now().UTC()
	booking, err := database.Queries.CreateBooking(context.Background(), dbgen.CreateBookingParams{
		CourtID:        courtID,
		CustomerUserID: customerID,
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	return booking.ID
}

func InsertBlock(t *testing.T, database *db.DB, courtID, createdBy int64, start, end time.Time) int64 {
	t.Helper()

	block, err := database.Queries.CreateCourtBlock(context.Background(), dbgen.CreateCourtBlockParams{
		CourtID:         courtID,
		StartTime:       start.UTC(),
		EndTime:         end.UTC(),
		Note:            "Maintenance",
		CreatedByUserID: createdBy,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert block: %v", err)
	}
	return block.ID
}

func InsertHoliday(t *testing.T, database *db.DB, establishmentID int64, date string, isOpen bool, opening, closing, note string) {
	t.Helper()

	_, err := database.Queries.UpsertEstablishmentHoliday(context.Background(), dbgen.UpsertEstablishmentHolidayParams{
		EstablishmentID: establishmentID,
		Date:            date,
		IsOpen:          isOpen,
		OpeningTime:     sql.NullString{String: opening, Valid: opening != ""},
		ClosingTime:     sql.NullString{String: closing, Valid: closing != ""},
		Note:            sql.NullString{String: note, Valid: note != ""},
	})
	if err != nil {
		t.Fatalf("insert holiday: %v", err)
	}
}

func CountRows(t *testing.T, database *db.DB, query string, args ...any) int {
	t.Helper()

	var count int
	if err := database.QueryRowContext(context.Background(), query, args...).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// InsertMonthlyPass stores a pass directly in the given status. ACTIVE passes
// inserted here are not materialized.
func InsertMonthlyPass(t *testing.T, database *db.DB, courtID, customerID int64, month string, weekday time.Weekday, start, end, status string) int64 {
	t.Helper()

	now := time.Now().UTC()
	pass, err := database.Queries.CreateMonthlyPass(context.Background(), dbgen.CreateMonthlyPassParams{
		CourtID:        courtID,
		CustomerUserID: customerID,
		Month:          month,
		Weekday:        int64(weekday),
		StartTime:      start,
		EndTime:        end,
		PriceCents:     8000,
		TermsSnapshot:  "Non-refundable once active.",
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("insert monthly pass: %v", err)
	}
	if status != "PENDING" {
		if _, err := database.ExecContext(context.Background(),
			"UPDATE monthly_passes SET status = ? WHERE id = ?", status, pass.ID); err != nil {
			t.Fatalf("set monthly pass status: %v", err)
		}
	}
	return pass.ID
}

// UTCTime parses "2006-01-02 15:04" in UTC.
func UTCTime(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("2006-01-02 15:04", raw, time.UTC)
	if err != nil {
		t.Fatalf("parse time %q: %v", raw, err)
	}
	return parsed
}
