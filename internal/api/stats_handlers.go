package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/service"
)

func GetStatsSummary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		sessions, err := app.SessionRepo().ListSessions(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions for stats")
			return
		}

		summary := service.CalculateSummary(sessions, time.Now())
		HandleSuccess(c, app.Logger(), summary, nil)
	}
}

func GetSubjectStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		days := queryDays(c, 30)

		now := time.Now()
		sessions, err := app.SessionRepo().ListSessionsBetween(c.Request.Context(), user.ID, now.AddDate(0, 0, -days), now.Add(time.Minute))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions for stats")
			return
		}

		totals := service.CalculateSubjectTotals(sessions)
		HandleSuccess(c, app.Logger(), totals, map[string]any{"days": days})
	}
}

func GetHeatmap(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		days := queryDays(c, 90)

		now := time.Now()
		sessions, err := app.SessionRepo().ListSessionsBetween(c.Request.Context(), user.ID, now.AddDate(0, 0, -days), now.Add(time.Minute))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions for heatmap")
			return
		}

		heatmap := service.CalculateHeatmap(sessions, now, days)
		HandleSuccess(c, app.Logger(), heatmap, map[string]any{"days": days})
	}
}

func queryDays(c *gin.Context, fallback int) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(fallback)))
	if err != nil || days < 1 || days > 366 {
		return fallback
	}
	return days
}
