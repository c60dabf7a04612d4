package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
)

var errBadTimeSlot = errors.New("time slot must be formatted as HH:MM-HH:MM with start before end")

// TimeSlot is a half-open interval of the day, in minutes since midnight.
type TimeSlot struct {
	Start int
	End   int
}

func (ts TimeSlot) String() string {
	return formatClock(ts.Start) + "-" + formatClock(ts.End)
}

// ParseTimeSlot parses labels like "09:00-09:30".
func ParseTimeSlot(label string) (TimeSlot, error) {
	parts := strings.Split(core.CleanString(label), "-")
	if len(parts) != 2 {
		return TimeSlot{}, errBadTimeSlot
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return TimeSlot{}, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return TimeSlot{}, err
	}
	if start >= end {
		return TimeSlot{}, errBadTimeSlot
	}
	return TimeSlot{Start: start, End: end}, nil
}

// NormalizeTimeSlot rewrites a valid label in its canonical HH:MM-HH:MM form.
func NormalizeTimeSlot(label string) (string, error) {
	ts, err := ParseTimeSlot(label)
	if err != nil {
		return "", err
	}
	return ts.String(), nil
}

// GenerateSlots cuts the presentation day into consecutive slots of conf.SlotMinutes.
// A trailing slot that would run past the end of the day is dropped.
func GenerateSlots(conf core.SchedulingConfig) ([]string, error) {
	start, err := parseClock(conf.DayStart)
	if err != nil {
		return nil, errors.Wrap(err, "parsing day start")
	}
	end, err := parseClock(conf.DayEnd)
	if err != nil {
		return nil, errors.Wrap(err, "parsing day end")
	}
	if conf.SlotMinutes <= 0 {
		return nil, errors.New("slot width must be positive")
	}

	var slots []string
	for m := start; m+conf.SlotMinutes <= end; m += conf.SlotMinutes {
		slots = append(slots, TimeSlot{Start: m, End: m + conf.SlotMinutes}.String())
	}
	return slots, nil
}

func parseClock(s string) (int, error) {
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 || len(hm[0]) != 2 || len(hm[1]) != 2 {
		return 0, errBadTimeSlot
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 24 {
		return 0, errBadTimeSlot
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, errBadTimeSlot
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
