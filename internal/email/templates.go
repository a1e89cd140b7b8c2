package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

type BookingDetails struct {
	EstablishmentName string
	CourtName         string
	Dates             []string
	TimeRange         string
	AmountCents       int64
	PaymentRequired   bool
	PayAtCourt        bool
}

type PassDetails struct {
	EstablishmentName string
	CourtName         string
	CustomerName      string
	Month             string
	Weekday           string
	TimeRange         string
	PriceCents        int64
	Terms             string
}

type AlertDetails struct {
	EstablishmentName string
	CourtName         string
	Date              string
	TimeRange         string
}

func FormatDateTimeRange(start, end time.Time) (string, string) {
	date := start.Format("Monday, Jan 2, 2006")
	timeRange := fmt.Sprintf("%s - %s %s", start.Format("3:04 PM"), end.Format("3:04 PM"), start.Format("MST"))
	return date, timeRange
}

// FormatCents renders an amount such as 2550 as "25.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func BuildBookingConfirmed(details BookingDetails) Message {
	return buildBookingEmail("Booking Confirmed", "Your court booking is confirmed.", details)
}

func BuildBookingPending(details BookingDetails) Message {
	intro := "Your court booking request was received and is awaiting confirmation."
	if details.PaymentRequired && !details.PayAtCourt {
		intro = "Your court booking is held pending payment."
	}
	return buildBookingEmail("Booking Received", intro, details)
}

func BuildBookingCancelled(details BookingDetails) Message {
	return buildBookingEmail("Booking Cancelled", "Your court booking has been cancelled.", details)
}

func BuildBookingReminder(details BookingDetails) Message {
	return buildBookingEmail("Upcoming Booking Reminder", "Reminder: your court booking is coming up.", details)
}

func buildBookingEmail(subjectPrefix, intro string, details BookingDetails) Message {
	name := fallback(details.EstablishmentName, "your club")
	lines := []string{
		intro,
		"",
		fmt.Sprintf("Club: %s", name),
		fmt.Sprintf("Court: %s", fallback(details.CourtName, "TBD")),
	}
	switch len(details.Dates) {
	case 0:
		lines = append(lines, "Date: TBD")
	case 1:
		lines = append(lines, fmt.Sprintf("Date: %s", details.Dates[0]))
	default:
		lines = append(lines, fmt.Sprintf("Dates: %s", strings.Join(details.Dates, "; ")))
	}
	lines = append(lines, fmt.Sprintf("Time: %s", fallback(details.TimeRange, "TBD")))
	if details.AmountCents > 0 {
		lines = append(lines, fmt.Sprintf("Total: %s", FormatCents(details.AmountCents)))
	}
	if details.PayAtCourt {
		lines = append(lines, "Payment: at the court")
	}

	return render(fmt.Sprintf("%s - %s", subjectPrefix, name), lines)
}

// BuildPassRequested is sent to the establishment owner.
func BuildPassRequested(details PassDetails) Message {
	name := fallback(details.EstablishmentName, "your club")
	lines := append([]string{
		fmt.Sprintf("%s requested a monthly pass that needs your confirmation.", fallback(details.CustomerName, "A customer")),
		"",
	}, passLines(details)...)
	return render(fmt.Sprintf("Monthly Pass Request - %s", name), lines)
}

func BuildPassActivated(details PassDetails) Message {
	name := fallback(details.EstablishmentName, "your club")
	lines := append([]string{"Your monthly pass is active.", ""}, passLines(details)...)
	if terms := strings.TrimSpace(details.Terms); terms != "" {
		lines = append(lines, fmt.Sprintf("Terms: %s", terms))
	}
	return render(fmt.Sprintf("Monthly Pass Confirmed - %s", name), lines)
}

func BuildPassCancelled(details PassDetails) Message {
	name := fallback(details.EstablishmentName, "your club")
	lines := append([]string{"Your monthly pass request was cancelled.", ""}, passLines(details)...)
	return render(fmt.Sprintf("Monthly Pass Cancelled - %s", name), lines)
}

func passLines(details PassDetails) []string {
	lines := []string{
		fmt.Sprintf("Club: %s", fallback(details.EstablishmentName, "your club")),
		fmt.Sprintf("Court: %s", fallback(details.CourtName, "TBD")),
		fmt.Sprintf("Month: %s", fallback(details.Month, "TBD")),
		fmt.Sprintf("Every: %s", fallback(details.Weekday, "TBD")),
		fmt.Sprintf("Time: %s", fallback(details.TimeRange, "TBD")),
	}
	if details.PriceCents > 0 {
		lines = append(lines, fmt.Sprintf("Price: %s", FormatCents(details.PriceCents)))
	}
	return lines
}

func BuildAlertAvailable(details AlertDetails) Message {
	name := fallback(details.EstablishmentName, "your club")
	lines := []string{
		"A court time you were watching is now available.",
		"",
		fmt.Sprintf("Club: %s", name),
		fmt.Sprintf("Court: %s", fallback(details.CourtName, "TBD")),
		fmt.Sprintf("Date: %s", fallback(details.Date, "TBD")),
		fmt.Sprintf("Time: %s", fallback(details.TimeRange, "TBD")),
		"",
		"Book soon, availability is first come first served.",
	}
	return render(fmt.Sprintf("Court Available - %s", name), lines)
}

func render(subject string, lines []string) Message {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")

	return Message{
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
		HTML:    b.String(),
	}
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
