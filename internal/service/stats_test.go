package service

import (
	"testing"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/stretchr/testify/assert"
)

func sessionAt(subjectID string, start time.Time, minutes int) internal.StudySession {
	return internal.StudySession{
		SubjectID:       subjectID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
	}
}

func TestCalculateSummary(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	sessions := []internal.StudySession{
		sessionAt("preset-math", now.Add(-2*time.Hour), 30),           // today
		sessionAt("preset-math", now.AddDate(0, 0, -2), 45),           // this week
		sessionAt("preset-english", now.AddDate(0, 0, -20), 60),       // this month
		sessionAt("preset-science", now.AddDate(0, 0, -40), 90),       // outside
	}

	s := CalculateSummary(sessions, now)
	assert.Equal(t, 30, s.TodayMinutes)
	assert.Equal(t, 75, s.WeekMinutes)
	assert.Equal(t, 135, s.MonthMinutes)
}

func TestCalculateSubjectTotals(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	sessions := []internal.StudySession{
		sessionAt("preset-math", now, 60),
		sessionAt("preset-math", now, 30),
		sessionAt("preset-english", now, 10),
	}

	totals := CalculateSubjectTotals(sessions)
	assert.Len(t, totals, 2)
	assert.Equal(t, "preset-math", totals[0].SubjectID)
	assert.Equal(t, 90, totals[0].Minutes)
	assert.InDelta(t, 0.9, totals[0].Share, 0.001)
	assert.Equal(t, "preset-english", totals[1].SubjectID)
	assert.InDelta(t, 0.1, totals[1].Share, 0.001)
}

func TestCalculateSubjectTotalsEmpty(t *testing.T) {
	assert.Empty(t, CalculateSubjectTotals(nil))
}

func TestCalculateHeatmapFillsEmptyDays(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	sessions := []internal.StudySession{
		sessionAt("preset-math", now.Add(-time.Hour), 25),
		sessionAt("preset-math", now.AddDate(0, 0, -1), 50),
	}

	days := CalculateHeatmap(sessions, now, 7)
	assert.Len(t, days, 7)
	assert.Equal(t, "2025-03-09", days[0].Date)
	assert.Equal(t, 0, days[0].Minutes)
	assert.Equal(t, "2025-03-14", days[5].Date)
	assert.Equal(t, 50, days[5].Minutes)
	assert.Equal(t, "2025-03-15", days[6].Date)
	assert.Equal(t, 25, days[6].Minutes)
}

func TestDurationMinutesRoundsWithFloor(t *testing.T) {
	start := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DurationMinutes(start, start.Add(10*time.Second)))
	assert.Equal(t, 1, DurationMinutes(start, start.Add(89*time.Second)))
	assert.Equal(t, 2, DurationMinutes(start, start.Add(125*time.Second)))
	assert.Equal(t, 60, DurationMinutes(start, start.Add(time.Hour)))
}

func TestValidateSessionRequest(t *testing.T) {
	now := time.Now()

	valid := &SessionRequest{
		SubjectID: "preset-math",
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(-30 * time.Minute),
	}
	assert.NoError(t, ValidateSessionRequest(valid))

	endBeforeStart := &SessionRequest{
		SubjectID: "preset-math",
		StartTime: now,
		EndTime:   now.Add(-time.Hour),
	}
	assert.Error(t, ValidateSessionRequest(endBeforeStart))

	futureDated := &SessionRequest{
		SubjectID: "preset-math",
		StartTime: now,
		EndTime:   now.Add(2 * time.Hour),
	}
	assert.Error(t, ValidateSessionRequest(futureDated))

	tooLong := &SessionRequest{
		SubjectID: "preset-math",
		StartTime: now.Add(-30 * time.Hour),
		EndTime:   now.Add(-time.Hour),
	}
	assert.Error(t, ValidateSessionRequest(tooLong))

	noSubject := &SessionRequest{
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(-30 * time.Minute),
	}
	assert.Error(t, ValidateSessionRequest(noSubject))
}

func TestPresetSubjects(t *testing.T) {
	presets := PresetSubjects()
	assert.NotEmpty(t, presets)
	for _, p := range presets {
		assert.True(t, p.Preset)
		assert.Empty(t, p.UserID)
	}

	math, ok := PresetSubject("preset-math")
	assert.True(t, ok)
	assert.Equal(t, "Math", math.Name)

	_, ok = PresetSubject("preset-basketweaving")
	assert.False(t, ok)
}
