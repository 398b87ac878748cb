package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/service"
)

func PostSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var body service.SessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateSessionRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		if _, err := service.ResolveSubject(c.Request.Context(), app.SubjectRepo(), body.SubjectID); err != nil {
			HandleError(c, app.Logger(), err, 404, "Unknown subject")
			return
		}

		session, err := service.CreateSession(c.Request.Context(), app.SessionRepo(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save session")
			return
		}

		c.JSON(201, session)
	}
}

func GetSessions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if date := c.Query("date"); date != "" {
			day, err := time.ParseInLocation("2006-01-02", date, time.Local)
			if err != nil {
				HandleError(c, app.Logger(), err, 400, "Invalid date, expected YYYY-MM-DD")
				return
			}
			sessions, err := app.SessionRepo().ListSessionsBetween(c.Request.Context(), user.ID, day, day.AddDate(0, 0, 1))
			if err != nil {
				HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions")
				return
			}
			HandleSuccess(c, app.Logger(), sessions, map[string]any{"date": date})
			return
		}

		sessions, err := app.SessionRepo().ListSessions(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions")
			return
		}
		HandleSuccess(c, app.Logger(), sessions, nil)
	}
}

func PutSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var body service.SessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateSessionRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		session, err := service.UpdateSession(c.Request.Context(), app.SessionRepo(), user, c.Param("id"), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 404, "Failed to update session")
			return
		}
		HandleSuccess(c, app.Logger(), session, nil)
	}
}

func DeleteSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if err := service.DeleteSession(c.Request.Context(), app.SessionRepo(), user, c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, 404, "Failed to delete session")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": c.Param("id")}, nil)
	}
}
