package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/service"
)

func GetSubjects(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		subjects, err := service.ListSubjects(c.Request.Context(), app.SubjectRepo(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch subjects")
			return
		}
		HandleSuccess(c, app.Logger(), subjects, nil)
	}
}

func PostSubject(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.SubjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request: name and color required")
			return
		}
		if err := service.ValidateSubjectRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Subject validation failed")
			return
		}

		subject, err := service.CreateSubject(c.Request.Context(), app.SubjectRepo(), user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save subject")
			return
		}
		c.JSON(201, subject)
	}
}

func DeleteSubject(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if err := service.DeleteSubject(c.Request.Context(), app.SubjectRepo(), user, c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, 404, "Failed to delete subject")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": c.Param("id")}, nil)
	}
}
