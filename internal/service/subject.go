package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/storage"
)

// Preset subjects are a fixed set shared by every user. Custom subjects are
// created per user and stored in the subject repository.
var presetSubjects = []internal.Subject{
	{ID: "preset-math", Name: "Math", Color: "#3b82f6", Preset: true},
	{ID: "preset-english", Name: "English", Color: "#ef4444", Preset: true},
	{ID: "preset-science", Name: "Science", Color: "#22c55e", Preset: true},
	{ID: "preset-history", Name: "History", Color: "#f59e0b", Preset: true},
	{ID: "preset-language", Name: "Language", Color: "#a855f7", Preset: true},
}

func PresetSubjects() []internal.Subject {
	out := make([]internal.Subject, len(presetSubjects))
	copy(out, presetSubjects)
	return out
}

func PresetSubject(id string) (*internal.Subject, bool) {
	for _, s := range presetSubjects {
		if s.ID == id {
			copied := s
			return &copied, true
		}
	}
	return nil, false
}

type SubjectRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,hexcolor"`
}

func ValidateSubjectRequest(req *SubjectRequest) error {
	return validate.Struct(req)
}

func CreateSubject(ctx context.Context, subjectRepo storage.SubjectRepository, user *internal.User, req *SubjectRequest) (*internal.Subject, error) {
	subject := &internal.Subject{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: time.Now(),
	}
	if err := subjectRepo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// ListSubjects returns the presets followed by the user's custom subjects.
func ListSubjects(ctx context.Context, subjectRepo storage.SubjectRepository, user *internal.User) ([]internal.Subject, error) {
	custom, err := subjectRepo.ListSubjects(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return append(PresetSubjects(), custom...), nil
}

// ResolveSubject looks an ID up among the presets first, then the user's
// custom subjects.
func ResolveSubject(ctx context.Context, subjectRepo storage.SubjectRepository, id string) (*internal.Subject, error) {
	if preset, ok := PresetSubject(id); ok {
		return preset, nil
	}
	return subjectRepo.GetSubject(ctx, id)
}

// DeleteSubject removes a custom subject. Presets cannot be deleted, and a
// custom subject is deletable only by its owner.
func DeleteSubject(ctx context.Context, subjectRepo storage.SubjectRepository, user *internal.User, id string) error {
	if _, ok := PresetSubject(id); ok {
		return internal.NewAppError(403, "preset subjects cannot be deleted")
	}
	subject, err := subjectRepo.GetSubject(ctx, id)
	if err != nil {
		return err
	}
	if subject.UserID != user.ID {
		return internal.NewAppError(403, "subject belongs to another user")
	}
	return subjectRepo.DeleteSubject(ctx, id)
}
