package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k25dtcn010/project-base/internal/models"
)

var hcm = time.FixedZone("ICT", 7*3600)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, hcm)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func officeShift() models.Shift {
	return models.Shift{ID: "s-office", Name: "Hành chính", StartTime: "08:00", EndTime: "17:00", IsActive: true}
}

func eveningShift() models.Shift {
	return models.Shift{ID: "s-evening", Name: "Tối", StartTime: "17:00", EndTime: "00:00", IsActive: true}
}

func nightShift() models.Shift {
	return models.Shift{ID: "s-night", Name: "Đêm", StartTime: "00:00", EndTime: "06:00", IsActive: true}
}

func TestAnalyzeSingleShiftLateArrival(t *testing.T) {
	interval := Interval{CheckIn: at(4, 8, 10), CheckOut: timePtr(at(4, 17, 0))}

	segments, outcome := Analyze(interval, []models.Shift{officeShift()}, hcm)
	require.Equal(t, OutcomeAnalyzed, outcome)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, "s-office", seg.ShiftID)
	assert.Equal(t, 530, seg.DurationMinutes)
	assert.Equal(t, 10, seg.LateMinutes)
	assert.Equal(t, 0, seg.EarlyLeaveMinutes)
	assert.Equal(t, 98.1, seg.OverlapPercentage)
	assert.Equal(t, models.ShiftTypePrimary, seg.ShiftType)
	assert.Equal(t, "Đi muộn 10 phút", seg.Note)
	assert.Equal(t, at(4, 0, 0), seg.WorkDate)
}

func TestAnalyzeCrossMidnightEarlyLeave(t *testing.T) {
	interval := Interval{CheckIn: at(4, 16, 50), CheckOut: timePtr(at(4, 23, 0))}

	segments, outcome := Analyze(interval, []models.Shift{eveningShift()}, hcm)
	require.Equal(t, OutcomeAnalyzed, outcome)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, at(4, 17, 0), seg.ActualStartTime)
	assert.Equal(t, at(4, 23, 0), seg.ActualEndTime)
	assert.Equal(t, 360, seg.DurationMinutes)
	assert.Equal(t, 85.7, seg.OverlapPercentage)
	assert.Equal(t, 0, seg.LateMinutes)
	assert.Equal(t, 60, seg.EarlyLeaveMinutes)
	assert.Equal(t, models.ShiftTypePrimary, seg.ShiftType)
	assert.Equal(t, "Về sớm 60 phút", seg.Note)
}

func TestAnalyzeBoundarySegmentsAcrossShiftHandover(t *testing.T) {
	interval := Interval{CheckIn: at(4, 16, 45), CheckOut: timePtr(at(4, 17, 15))}
	shifts := []models.Shift{officeShift(), eveningShift()}

	segments, outcome := Analyze(interval, shifts, hcm)
	require.Equal(t, OutcomeAnalyzed, outcome)
	require.Len(t, segments, 2)

	office := segments[0]
	assert.Equal(t, "s-office", office.ShiftID)
	assert.Equal(t, at(4, 16, 45), office.ActualStartTime)
	assert.Equal(t, at(4, 17, 0), office.ActualEndTime)
	assert.Equal(t, 15, office.DurationMinutes)
	assert.Equal(t, 2.8, office.OverlapPercentage)
	assert.Equal(t, models.ShiftTypeBoundary, office.ShiftType)

	evening := segments[1]
	assert.Equal(t, "s-evening", evening.ShiftID)
	assert.Equal(t, at(4, 17, 0), evening.ActualStartTime)
	assert.Equal(t, at(4, 17, 15), evening.ActualEndTime)
	assert.Equal(t, 15, evening.DurationMinutes)
	assert.Equal(t, 3.6, evening.OverlapPercentage)
	assert.Equal(t, models.ShiftTypeBoundary, evening.ShiftType)
}

func TestAnalyzeLatenessMeasuredAgainstRawCheckIn(t *testing.T) {
	// The 16:45 arrival counts as late against the office shift's own 08:00
	// start even though the overlap itself only begins at 16:45.
	interval := Interval{CheckIn: at(4, 16, 45), CheckOut: timePtr(at(4, 17, 15))}

	segments, _ := Analyze(interval, []models.Shift{officeShift(), eveningShift()}, hcm)
	require.Len(t, segments, 2)

	assert.Equal(t, 525, segments[0].LateMinutes)
	assert.Equal(t, 0, segments[0].EarlyLeaveMinutes)
	assert.Equal(t, 0, segments[1].LateMinutes)
	assert.Equal(t, 405, segments[1].EarlyLeaveMinutes)
}

func TestAnalyzeMissingCheckOut(t *testing.T) {
	interval := Interval{CheckIn: at(4, 8, 0)}

	segments, outcome := Analyze(interval, []models.Shift{officeShift()}, hcm)
	assert.Equal(t, OutcomeNoCheckOut, outcome)
	assert.Empty(t, segments)
}

func TestAnalyzeEmptyShiftCatalog(t *testing.T) {
	interval := Interval{CheckIn: at(4, 8, 0), CheckOut: timePtr(at(4, 17, 0))}

	segments, outcome := Analyze(interval, nil, hcm)
	assert.Equal(t, OutcomeNoActiveShifts, outcome)
	assert.Empty(t, segments)
}

func TestAnalyzeIntervalSpanningTwoDays(t *testing.T) {
	interval := Interval{CheckIn: at(4, 23, 0), CheckOut: timePtr(at(5, 1, 0))}

	segments, outcome := Analyze(interval, []models.Shift{nightShift()}, hcm)
	require.Equal(t, OutcomeAnalyzed, outcome)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, at(5, 0, 0), seg.WorkDate)
	assert.Equal(t, at(5, 0, 0), seg.ActualStartTime)
	assert.Equal(t, at(5, 1, 0), seg.ActualEndTime)
	assert.Equal(t, 60, seg.DurationMinutes)
}

func TestAnalyzeIdempotent(t *testing.T) {
	interval := Interval{CheckIn: at(4, 16, 45), CheckOut: timePtr(at(5, 2, 30))}
	shifts := []models.Shift{nightShift(), officeShift(), eveningShift()}

	first, firstOutcome := Analyze(interval, shifts, hcm)
	second, secondOutcome := Analyze(interval, shifts, hcm)

	assert.Equal(t, firstOutcome, secondOutcome)
	assert.Equal(t, first, second)
}

func TestAnalyzeSegmentInvariants(t *testing.T) {
	interval := Interval{CheckIn: at(4, 16, 45), CheckOut: timePtr(at(5, 2, 30))}
	shifts := []models.Shift{nightShift(), officeShift(), eveningShift()}

	segments, outcome := Analyze(interval, shifts, hcm)
	require.Equal(t, OutcomeAnalyzed, outcome)
	require.NotEmpty(t, segments)

	checkOut := at(5, 2, 30)
	for _, seg := range segments {
		assert.True(t, seg.ActualStartTime.Before(seg.ActualEndTime), "segment %s must have positive overlap", seg.ShiftID)
		assert.False(t, seg.ActualStartTime.Before(interval.CheckIn), "segment starts inside the attendance interval")
		assert.False(t, seg.ActualEndTime.After(checkOut), "segment ends inside the attendance interval")
		assert.GreaterOrEqual(t, seg.DurationMinutes, 0)
		assert.GreaterOrEqual(t, seg.LateMinutes, 0)
		assert.GreaterOrEqual(t, seg.EarlyLeaveMinutes, 0)
	}
}

func TestAnalyzeOrderingDayThenShift(t *testing.T) {
	interval := Interval{CheckIn: at(4, 16, 0), CheckOut: timePtr(at(5, 9, 0))}
	shifts := []models.Shift{nightShift(), officeShift(), eveningShift()}

	segments, _ := Analyze(interval, shifts, hcm)
	require.Len(t, segments, 4)

	// Day 4: office overlap and the full evening shift, in supplied shift
	// order; day 5: night shift tail and the office morning.
	assert.Equal(t, "s-office", segments[0].ShiftID)
	assert.Equal(t, at(4, 0, 0), segments[0].WorkDate)
	assert.Equal(t, "s-evening", segments[1].ShiftID)
	assert.Equal(t, at(4, 0, 0), segments[1].WorkDate)
	assert.Equal(t, "s-night", segments[2].ShiftID)
	assert.Equal(t, at(5, 0, 0), segments[2].WorkDate)
	assert.Equal(t, "s-office", segments[3].ShiftID)
	assert.Equal(t, at(5, 0, 0), segments[3].WorkDate)
}

func TestAnalyzeOverlappingShiftWindowsDoubleCount(t *testing.T) {
	shifts := []models.Shift{
		{ID: "a", Name: "A", StartTime: "08:00", EndTime: "12:00", IsActive: true},
		{ID: "b", Name: "B", StartTime: "11:00", EndTime: "15:00", IsActive: true},
	}
	interval := Interval{CheckIn: at(4, 10, 0), CheckOut: timePtr(at(4, 13, 0))}

	segments, _ := Analyze(interval, shifts, hcm)
	require.Len(t, segments, 2)

	// [11:00, 12:00) is legitimately reported under both shifts.
	assert.Equal(t, at(4, 10, 0), segments[0].ActualStartTime)
	assert.Equal(t, at(4, 12, 0), segments[0].ActualEndTime)
	assert.Equal(t, at(4, 11, 0), segments[1].ActualStartTime)
	assert.Equal(t, at(4, 13, 0), segments[1].ActualEndTime)
}

func TestClassificationThreshold(t *testing.T) {
	// 07:00-23:40 is a 1000-minute shift: 250 minutes is exactly 25.0%,
	// 249 minutes rounds to 24.9%.
	longShift := models.Shift{ID: "long", Name: "Long", StartTime: "07:00", EndTime: "23:40", IsActive: true}

	segments, _ := Analyze(Interval{CheckIn: at(4, 7, 0), CheckOut: timePtr(at(4, 11, 10))}, []models.Shift{longShift}, hcm)
	require.Len(t, segments, 1)
	assert.Equal(t, 25.0, segments[0].OverlapPercentage)
	assert.Equal(t, models.ShiftTypePrimary, segments[0].ShiftType)

	segments, _ = Analyze(Interval{CheckIn: at(4, 7, 0), CheckOut: timePtr(at(4, 11, 9))}, []models.Shift{longShift}, hcm)
	require.Len(t, segments, 1)
	assert.Equal(t, 24.9, segments[0].OverlapPercentage)
	assert.Equal(t, models.ShiftTypeBoundary, segments[0].ShiftType)
}

func TestAnalyzeCombinedNote(t *testing.T) {
	interval := Interval{CheckIn: at(4, 8, 30), CheckOut: timePtr(at(4, 16, 0))}

	segments, _ := Analyze(interval, []models.Shift{officeShift()}, hcm)
	require.Len(t, segments, 1)
	assert.Equal(t, 30, segments[0].LateMinutes)
	assert.Equal(t, 60, segments[0].EarlyLeaveMinutes)
	assert.Equal(t, "Đi muộn 30 phút, Về sớm 60 phút", segments[0].Note)
}

func TestAnalyzeLateOnCrossMidnightShift(t *testing.T) {
	interval := Interval{CheckIn: at(4, 18, 30), CheckOut: timePtr(at(5, 0, 0))}

	segments, _ := Analyze(interval, []models.Shift{eveningShift()}, hcm)
	require.Len(t, segments, 1)
	assert.Equal(t, 90, segments[0].LateMinutes)
	assert.Equal(t, 0, segments[0].EarlyLeaveMinutes)
	assert.Equal(t, 330, segments[0].DurationMinutes)
}

func TestScheduledDurationMinutes(t *testing.T) {
	assert.Equal(t, 540, ScheduledDurationMinutes("08:00", "17:00"))
	assert.Equal(t, 420, ScheduledDurationMinutes("17:00", "00:00"))
	assert.Equal(t, 360, ScheduledDurationMinutes("00:00", "06:00"))
	assert.Equal(t, 120, ScheduledDurationMinutes("06:00", "08:00"))
	// End equal to start is treated as a full next-day wrap by the duration
	// rule; such shifts are rejected upstream.
	assert.Equal(t, 1440, ScheduledDurationMinutes("09:00", "09:00"))
}

func TestAnalyzeUTCInputsConvertedToLocalZone(t *testing.T) {
	// 01:10 UTC is 08:10 in UTC+7.
	checkIn := time.Date(2024, time.March, 4, 1, 10, 0, 0, time.UTC)
	checkOut := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	segments, outcome := Analyze(Interval{CheckIn: checkIn, CheckOut: timePtr(checkOut)}, []models.Shift{officeShift()}, hcm)
	require.Equal(t, OutcomeAnalyzed, outcome)
	require.Len(t, segments, 1)
	assert.Equal(t, 10, segments[0].LateMinutes)
	assert.Equal(t, 530, segments[0].DurationMinutes)
	assert.Equal(t, at(4, 0, 0), segments[0].WorkDate)
}
