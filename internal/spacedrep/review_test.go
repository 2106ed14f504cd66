package spacedrep

import (
	"testing"
	"time"

	"github.com/abhisek/examcoach/internal/history"
)

func TestIsDue_BeforeDate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := history.MistakeCard{Due: now.Add(24 * time.Hour)}
	if IsDue(c, now) {
		t.Error("expected not due before due date")
	}
}

func TestIsDue_OnDate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := history.MistakeCard{Due: now}
	if !IsDue(c, now) {
		t.Error("expected due on due date")
	}
}

func TestOverdueDays_NotDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := history.MistakeCard{Due: now.Add(48 * time.Hour)}
	if got := OverdueDays(c, now); got != 0 {
		t.Errorf("OverdueDays() = %f, want 0", got)
	}
}

func TestOverdueDays_ThreeDaysOverdue(t *testing.T) {
	due := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := history.MistakeCard{Due: due}
	got := OverdueDays(c, due.Add(3*24*time.Hour))
	if got < 2.99 || got > 3.01 {
		t.Errorf("OverdueDays() = %f, want ~3.0", got)
	}
}

func TestStatus(t *testing.T) {
	due := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	// 4-day interval gives a 2-day grace period.
	c := history.MistakeCard{Due: due, Interval: 4}

	tests := []struct {
		name string
		now  time.Time
		want ReviewStatus
	}{
		{"before due", due.Add(-time.Hour), ReviewNotDue},
		{"within grace", due.Add(24 * time.Hour), ReviewDue},
		{"past grace", due.Add(3 * 24 * time.Hour), ReviewOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(c, tt.now); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDaysUntilReview(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := history.MistakeCard{Due: now.Add(36 * time.Hour)}
	if got := DaysUntilReview(c, now); got != 2 {
		t.Errorf("DaysUntilReview() = %d, want 2", got)
	}
	c.Due = now
	if got := DaysUntilReview(c, now); got != 0 {
		t.Errorf("DaysUntilReview(due) = %d, want 0", got)
	}
}
