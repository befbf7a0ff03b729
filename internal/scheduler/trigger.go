package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidTrigger indicates a trigger that is not a valid HH:MM time.
var ErrInvalidTrigger = errors.New("invalid trigger time")

var triggerPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// Trigger is a daily wall-clock time at which a scheduled export fires.
type Trigger struct {
	Label  string
	Hour   int
	Minute int
}

// ParseTrigger parses an HH:MM trigger time.
func ParseTrigger(s string) (Trigger, error) {
	m := triggerPattern.FindStringSubmatch(s)
	if m == nil {
		return Trigger{}, fmt.Errorf("%w: %q", ErrInvalidTrigger, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return Trigger{}, fmt.Errorf("%w: %q", ErrInvalidTrigger, s)
	}
	return Trigger{Label: s, Hour: hour, Minute: minute}, nil
}

// ParseTriggers parses a trigger list, dropping duplicates and keeping order.
func ParseTriggers(values []string) ([]Trigger, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no trigger times configured", ErrInvalidTrigger)
	}
	seen := make(map[string]bool, len(values))
	triggers := make([]Trigger, 0, len(values))
	for _, v := range values {
		t, err := ParseTrigger(v)
		if err != nil {
			return nil, err
		}
		if seen[t.Label] {
			continue
		}
		seen[t.Label] = true
		triggers = append(triggers, t)
	}
	return triggers, nil
}

// On returns the trigger's instant on the calendar day of day.
func (t Trigger) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// NextOccurrence returns the nearest trigger instant strictly after now. A
// trigger at or before now rolls to the next calendar day.
func NextOccurrence(triggers []Trigger, now time.Time) time.Time {
	var next time.Time
	for _, t := range triggers {
		at := t.On(now)
		if !at.After(now) {
			at = t.On(now.AddDate(0, 0, 1))
		}
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}
	return next
}
