package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/storage"
)

var validate = validator.New()

type SessionRequest struct {
	SubjectID string    `json:"subject_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Memo      string    `json:"memo,omitempty" validate:"omitempty,max=500"`
	Source    string    `json:"source" validate:"omitempty,oneof=timer manual"`
}

// ValidateSessionRequest enforces the boundary rules on top of the struct
// tags: no future-dated end, duration capped at 24 hours.
func ValidateSessionRequest(body *SessionRequest) error {
	if err := validate.Struct(body); err != nil {
		return err
	}
	if body.EndTime.After(time.Now().Add(time.Minute)) {
		return errors.New("end_time must not be in the future")
	}
	if body.EndTime.Sub(body.StartTime) > internal.MaxSessionSeconds*time.Second {
		return errors.New("session duration must not exceed 24 hours")
	}
	return nil
}

// DurationMinutes rounds an interval to whole minutes with a floor of 1, so a
// stopped run of a few seconds is still recorded.
func DurationMinutes(start, end time.Time) int {
	minutes := int(end.Sub(start).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		return 1
	}
	return minutes
}

func CreateSession(ctx context.Context, sessionRepo storage.SessionRepository, user *internal.User, body *SessionRequest) (*internal.StudySession, error) {
	source := body.Source
	if source == "" {
		source = internal.SourceManual
	}
	session := &internal.StudySession{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		SubjectID:       body.SubjectID,
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		DurationMinutes: DurationMinutes(body.StartTime, body.EndTime),
		Memo:            body.Memo,
		Source:          source,
		CreatedAt:       time.Now(),
	}
	if err := sessionRepo.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSession applies a manual edit. Timer-recorded sessions are immutable;
// only manual entries may be changed.
func UpdateSession(ctx context.Context, sessionRepo storage.SessionRepository, user *internal.User, id string, body *SessionRequest) (*internal.StudySession, error) {
	existing, err := sessionRepo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != user.ID {
		return nil, internal.NewAppError(403, "session belongs to another user")
	}
	if existing.Source != internal.SourceManual {
		return nil, internal.NewAppError(403, "timer sessions cannot be edited")
	}
	existing.SubjectID = body.SubjectID
	existing.StartTime = body.StartTime
	existing.EndTime = body.EndTime
	existing.DurationMinutes = DurationMinutes(body.StartTime, body.EndTime)
	existing.Memo = body.Memo
	if err := sessionRepo.UpdateSession(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func DeleteSession(ctx context.Context, sessionRepo storage.SessionRepository, user *internal.User, id string) error {
	existing, err := sessionRepo.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != user.ID {
		return internal.NewAppError(403, "session belongs to another user")
	}
	return sessionRepo.DeleteSession(ctx, id)
}
