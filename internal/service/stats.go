package service

import (
	"sort"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

type Summary struct {
	TodayMinutes int `json:"today_minutes"`
	WeekMinutes  int `json:"week_minutes"`
	MonthMinutes int `json:"month_minutes"`
}

type SubjectTotal struct {
	SubjectID string  `json:"subject_id"`
	Minutes   int     `json:"minutes"`
	Share     float64 `json:"share"`
}

type HeatmapDay struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Minutes int    `json:"minutes"`
}

// CalculateSummary totals the given sessions for today, the trailing 7 days
// and the trailing 30 days, relative to now.
func CalculateSummary(sessions []internal.StudySession, now time.Time) Summary {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekCutoff := now.AddDate(0, 0, -7)
	monthCutoff := now.AddDate(0, 0, -30)

	var s Summary
	for _, sess := range sessions {
		if !sess.StartTime.Before(dayStart) {
			s.TodayMinutes += sess.DurationMinutes
		}
		if sess.StartTime.After(weekCutoff) {
			s.WeekMinutes += sess.DurationMinutes
		}
		if sess.StartTime.After(monthCutoff) {
			s.MonthMinutes += sess.DurationMinutes
		}
	}
	return s
}

// CalculateSubjectTotals breaks total minutes down per subject with each
// subject's share of the whole, largest first.
func CalculateSubjectTotals(sessions []internal.StudySession) []SubjectTotal {
	byID := map[string]int{}
	total := 0
	for _, sess := range sessions {
		byID[sess.SubjectID] += sess.DurationMinutes
		total += sess.DurationMinutes
	}

	totals := make([]SubjectTotal, 0, len(byID))
	for id, minutes := range byID {
		share := 0.0
		if total > 0 {
			share = float64(minutes) / float64(total)
		}
		totals = append(totals, SubjectTotal{SubjectID: id, Minutes: minutes, Share: share})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Minutes != totals[j].Minutes {
			return totals[i].Minutes > totals[j].Minutes
		}
		return totals[i].SubjectID < totals[j].SubjectID
	})
	return totals
}

// CalculateHeatmap buckets minutes per calendar day for the trailing days
// ending at now. Days with no sessions are present with zero minutes so the
// calendar renders a complete grid.
func CalculateHeatmap(sessions []internal.StudySession, now time.Time, days int) []HeatmapDay {
	byDate := map[string]int{}
	for _, sess := range sessions {
		byDate[sess.StartTime.Format("2006-01-02")] += sess.DurationMinutes
	}

	out := make([]HeatmapDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, HeatmapDay{Date: date, Minutes: byDate[date]})
	}
	return out
}
