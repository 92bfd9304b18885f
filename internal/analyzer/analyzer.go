// Package analyzer implements the shift overlay engine: it splits a raw
// check-in/check-out interval into per-shift segments against a repeating
// daily shift catalog, deriving duration, lateness and early-leave metrics
// for each segment. The computation is pure; persistence of the resulting
// segments is the caller's concern.
package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/k25dtcn010/project-base/internal/models"
)

// boundaryThresholdPercent separates incidental (boundary) segments from
// primary ones: below this share of the shift's scheduled duration the
// overlap is considered incidental.
const boundaryThresholdPercent = 25.0

// Interval is a raw attendance span. CheckOut is nil while the attendance
// is still open, which makes the interval not yet analyzable.
type Interval struct {
	CheckIn  time.Time
	CheckOut *time.Time
}

// Segment is the portion of an attendance interval that falls within one
// shift's window on one calendar day. WorkDate is the local midnight of the
// day the shift's scheduled start falls on, which for cross-midnight shifts
// is not necessarily the day of the overlap.
type Segment struct {
	ShiftID           string
	ShiftName         string
	ShiftStartTime    string
	ShiftEndTime      string
	WorkDate          time.Time
	ActualStartTime   time.Time
	ActualEndTime     time.Time
	DurationMinutes   int
	LateMinutes       int
	EarlyLeaveMinutes int
	OverlapPercentage float64
	ShiftType         models.ShiftType
	Note              string
}

// Outcome distinguishes a completed analysis from the two skip conditions.
// Neither skip is an error: callers treat them as "nothing to do".
type Outcome string

const (
	// OutcomeAnalyzed means the interval was reconciled against the catalog.
	OutcomeAnalyzed Outcome = "analyzed"
	// OutcomeNoCheckOut means the interval has no check-out time yet.
	OutcomeNoCheckOut Outcome = "no_check_out"
	// OutcomeNoActiveShifts means the shift catalog was empty.
	OutcomeNoActiveShifts Outcome = "no_active_shifts"
)

// Analyze reconciles an attendance interval against the provided shift
// definitions, which the caller pre-filters to active and sorts by start
// time. Segments are emitted per calendar day spanned by the interval, in
// day order then shift order. loc is the deployment's local timezone; all
// wall-clock shift times are interpreted in it.
func Analyze(interval Interval, shifts []models.Shift, loc *time.Location) ([]Segment, Outcome) {
	if interval.CheckOut == nil {
		return nil, OutcomeNoCheckOut
	}
	if len(shifts) == 0 {
		return nil, OutcomeNoActiveShifts
	}

	checkIn := interval.CheckIn.In(loc)
	checkOut := interval.CheckOut.In(loc)

	segments := []Segment{}
	currentDay := startOfDay(checkIn)
	lastDay := startOfDay(checkOut)

	for !currentDay.After(lastDay) {
		for _, shift := range shifts {
			shiftStart := atClock(currentDay, shift.StartTime)
			shiftEnd := atClock(currentDay, shift.EndTime)
			if shift.CrossesMidnight() {
				shiftEnd = shiftEnd.AddDate(0, 0, 1)
			}

			overlapStart := maxInstant(checkIn, shiftStart)
			overlapEnd := minInstant(checkOut, shiftEnd)
			if !overlapStart.Before(overlapEnd) {
				continue
			}

			duration := minutesBetween(overlapStart, overlapEnd)
			scheduled := ScheduledDurationMinutes(shift.StartTime, shift.EndTime)
			percentage := roundToTenth(float64(duration) / float64(scheduled) * 100)

			// Lateness and early leave are measured against the raw check-in
			// and check-out, not the segment's overlap bounds, so the same
			// values repeat on every segment the interval touches that day.
			lateMinutes := 0
			if checkIn.After(shiftStart) && checkIn.Before(shiftEnd) {
				lateMinutes = minutesBetween(shiftStart, checkIn)
			}
			earlyLeaveMinutes := 0
			if checkOut.Before(shiftEnd) && checkOut.After(shiftStart) {
				earlyLeaveMinutes = minutesBetween(checkOut, shiftEnd)
			}

			segments = append(segments, Segment{
				ShiftID:           shift.ID,
				ShiftName:         shift.Name,
				ShiftStartTime:    shift.StartTime,
				ShiftEndTime:      shift.EndTime,
				WorkDate:          currentDay,
				ActualStartTime:   overlapStart,
				ActualEndTime:     overlapEnd,
				DurationMinutes:   duration,
				LateMinutes:       lateMinutes,
				EarlyLeaveMinutes: earlyLeaveMinutes,
				OverlapPercentage: percentage,
				ShiftType:         classify(percentage),
				Note:              buildNote(lateMinutes, earlyLeaveMinutes),
			})
		}

		currentDay = currentDay.AddDate(0, 0, 1)
	}

	return segments, OutcomeAnalyzed
}

// ScheduledDurationMinutes returns a shift's nominal length, treating an end
// wall-clock time that is not after the start as next-day.
func ScheduledDurationMinutes(startTime, endTime string) int {
	start := clockMinutes(startTime)
	end := clockMinutes(endTime)
	if end <= start {
		end += 24 * 60
	}
	return end - start
}

// classify tags a segment by its rounded overlap percentage. The overtime
// variant exists in the model but no rule assigns it.
func classify(overlapPercentage float64) models.ShiftType {
	if overlapPercentage < boundaryThresholdPercent {
		return models.ShiftTypeBoundary
	}
	return models.ShiftTypePrimary
}

func buildNote(lateMinutes, earlyLeaveMinutes int) string {
	var notes []string
	if lateMinutes > 0 {
		notes = append(notes, fmt.Sprintf("Đi muộn %d phút", lateMinutes))
	}
	if earlyLeaveMinutes > 0 {
		notes = append(notes, fmt.Sprintf("Về sớm %d phút", earlyLeaveMinutes))
	}
	return strings.Join(notes, ", ")
}

// minutesBetween returns whole minutes from start to end, truncated, never
// negative.
func minutesBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

func maxInstant(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minInstant(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// startOfDay returns local midnight of t's calendar day, preserving t's
// location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atClock combines a local midnight with an "HH:mm" wall-clock time.
func atClock(day time.Time, clock string) time.Time {
	h, m := parseClock(clock)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// parseClock splits "HH:mm". Malformed components default to zero; format
// validation happens upstream when shifts are created.
func parseClock(clock string) (int, int) {
	parts := strings.SplitN(clock, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m := 0
	if len(parts) == 2 {
		m, _ = strconv.Atoi(parts[1])
	}
	return h, m
}

func clockMinutes(clock string) int {
	h, m := parseClock(clock)
	return h*60 + m
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
