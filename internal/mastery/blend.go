package mastery

import (
	"math"
	"time"

	"github.com/abhisek/examcoach/internal/history"
)

const (
	// accuracyBase is the accuracy multiplier before any confidence bonus.
	accuracyBase = 0.55
	// confidenceWeight scales the repeated-exposure bonus on accuracy.
	confidenceWeight = 0.25
	// recencyWeight is the share of the blended score owed to recency.
	recencyWeight = 0.20
	// RecencyScaleDays is the decay constant of exp(-days/scale).
	RecencyScaleDays = 21.0
)

// Confidence returns min(1, log2(attempts+1)/3).
func Confidence(attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return math.Min(1, math.Log2(float64(attempts)+1)/3)
}

// ItemWeight returns 1 + log2(attempts+1).
func ItemWeight(attempts int) float64 {
	if attempts < 0 {
		attempts = 0
	}
	return 1 + math.Log2(float64(attempts)+1)
}

// DaysBetween returns the number of whole calendar days (UTC) from one
// instant to another, never negative. Day granularity keeps every derived
// score stable for the whole of a day.
func DaysBetween(from, to time.Time) float64 {
	f := from.UTC().Truncate(24 * time.Hour)
	t := to.UTC().Truncate(24 * time.Hour)
	if !t.After(f) {
		return 0
	}
	return math.Round(t.Sub(f).Hours() / 24)
}

// Recency returns exp(-days/21) since the last answer, or 0 when the item
// was never answered.
func Recency(last *time.Time, now time.Time) float64 {
	if last == nil || last.IsZero() {
		return 0
	}
	return math.Exp(-DaysBetween(*last, now) / RecencyScaleDays)
}

// Blend returns the blended score in [0,1] and the evidence weight for one
// item. ok is false when the item has no attempts.
func Blend(stat history.AttemptStat, now time.Time) (score, weight float64, ok bool) {
	if stat.Attempts <= 0 {
		return 0, 0, false
	}
	accuracy := stat.Accuracy()
	confidence := Confidence(stat.Attempts)
	recency := Recency(stat.LastAnsweredAt, now)

	score = accuracy*(accuracyBase+confidence*confidenceWeight) + recency*recencyWeight
	return clamp(score, 0, 1), ItemWeight(stat.Attempts), true
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
