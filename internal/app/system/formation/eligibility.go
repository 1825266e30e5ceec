package formation

import (
	"fmt"
	"time"

	"github.com/dalemusser/rantrio/internal/domain/models"
	"go.uber.org/zap"
)

// MinimumAge is the youngest age, in whole years, that can join a trio.
const MinimumAge = 15

// ParseBirthday parses a stored birthday. Profiles hold an ISO calendar date
// but older rows carry a full RFC 3339 timestamp; only the date part is used.
func ParseBirthday(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse birthday %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// AgeOn returns the age in whole years on the calendar day of today.
// The birthday counts as reached on its own month and day; someone born on
// February 29 turns a year older on March 1 in non-leap years.
func AgeOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// FilterEligible keeps the candidates who are at least minAge on today.
// Candidates with an unreadable birthday are dropped and logged.
func FilterEligible(cands []models.Candidate, today time.Time, minAge int, logger *zap.Logger) []models.Candidate {
	out := make([]models.Candidate, 0, len(cands))
	for _, c := range cands {
		birth, err := ParseBirthday(c.Birthday)
		if err != nil {
			logger.Warn("skipping candidate with invalid birthday",
				zap.String("user_id", c.UserID), zap.Error(err))
			continue
		}
		if AgeOn(birth, today) >= minAge {
			out = append(out, c)
		}
	}
	return out
}
