package spacedrep

import (
	"time"

	"github.com/abhisek/examcoach/internal/history"
)

// IsDue returns true if the card is due for review (at or past its due time).
func IsDue(c history.MistakeCard, now time.Time) bool {
	return !now.Before(c.Due)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func OverdueDays(c history.MistakeCard, now time.Time) float64 {
	if now.Before(c.Due) {
		return 0
	}
	return now.Sub(c.Due).Hours() / 24.0
}

// isPastGrace returns true once a due card has been left for more than half
// of its interval.
func isPastGrace(c history.MistakeCard, now time.Time) bool {
	if !IsDue(c, now) {
		return false
	}
	interval := max(c.Interval, 1)
	graceHours := float64(interval) * 0.5 * 24.0
	threshold := c.Due.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewStatus describes a card's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for display.
func Status(c history.MistakeCard, now time.Time) ReviewStatus {
	if isPastGrace(c, now) {
		return ReviewOverdue
	}
	if IsDue(c, now) {
		return ReviewDue
	}
	return ReviewNotDue
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func DaysUntilReview(c history.MistakeCard, now time.Time) int {
	if IsDue(c, now) {
		return 0
	}
	return int(c.Due.Sub(now).Hours()/24.0) + 1
}
