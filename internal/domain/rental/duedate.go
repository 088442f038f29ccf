package rental

import (
	"fmt"
	"time"

	"github.com/rentledger/backend/internal/domain/shared"
)

const (
	// MinDueDay is the first valid day-of-month for rent
	MinDueDay = 1
	// MaxDueDay is the last valid day-of-month for rent
	MaxDueDay = 31
)

// ValidateDueDay checks that day is a usable day-of-month
func ValidateDueDay(day int) error {
	if day < MinDueDay || day > MaxDueDay {
		return shared.NewDomainError(shared.CodeInvalidArgument,
			fmt.Sprintf("due day must be between %d and %d, got %d", MinDueDay, MaxDueDay, day))
	}
	return nil
}

// NextDueDate returns the next date rent falls due for a unit whose rent is
// due on dueDay, as seen from asOf. The result is never before asOf's date.
//
// The due day is first tried in asOf's month; if that date has already
// passed, the same day in the following month is tried. When the day does not
// exist in the month being tried (the 30th in February, the 31st in April)
// the result is the 1st of the month after asOf's month. It is not clamped to
// the last day of the short month.
func NextDueDate(dueDay int, asOf time.Time) (time.Time, error) {
	if err := ValidateDueDay(dueDay); err != nil {
		return time.Time{}, err
	}

	loc := asOf.Location()
	year, month, _ := asOf.Date()
	today := DateOf(asOf)

	due, ok := calendarDate(year, month, dueDay, loc)
	if ok && due.Before(today) {
		nextYear, nextMonth := followingMonth(year, month)
		due, ok = calendarDate(nextYear, nextMonth, dueDay, loc)
	}
	if !ok {
		nextYear, nextMonth := followingMonth(year, month)
		return time.Date(nextYear, nextMonth, 1, 0, 0, 0, 0, loc), nil
	}
	return due, nil
}

// DateOf truncates t to midnight in its own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a's date to b's date
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// Built in UTC so DST transitions cannot shave an hour off the span.
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day, each read
// in its own location.
func SameDay(a, b time.Time) bool {
	return calendarKey(a) == calendarKey(b)
}

// calendarKey orders dates by their wall-clock calendar day, ignoring time
// of day and location.
func calendarKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// calendarDate builds year-month-day and reports whether that day exists.
// time.Date normalises overflow (Feb 30 -> Mar 2), which is detected here.
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return t, t.Day() == day && t.Month() == month
}

func followingMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
