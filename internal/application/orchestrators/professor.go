package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carpa/internal/domain/professor"
)

// ProfessorStoreForOrchestrator defines the store interface needed by professor orchestrators.
type ProfessorStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (professor.Professor, error)
	Save(ctx context.Context, p professor.Professor) error
	Delete(ctx context.Context, id string) error
}

// CreateProfessorInput carries input for adding a professor.
type CreateProfessorInput struct {
	Name      string
	Specialty string
	Bio       string
	PhotoURL  string
}

// CreateProfessorDeps holds dependencies for CreateProfessor.
type CreateProfessorDeps struct {
	ProfessorStore ProfessorStoreForOrchestrator
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteCreateProfessor adds an active professor.
// PRE: Name is non-empty
// POST: Professor persisted as active
func ExecuteCreateProfessor(ctx context.Context, input CreateProfessorInput, deps CreateProfessorDeps) (professor.Professor, error) {
	p := professor.Professor{
		ID:        deps.GenerateID(),
		Name:      strings.TrimSpace(input.Name),
		Specialty: strings.TrimSpace(input.Specialty),
		Bio:       strings.TrimSpace(input.Bio),
		PhotoURL:  strings.TrimSpace(input.PhotoURL),
		Active:    true,
		CreatedAt: deps.Now(),
	}
	if err := p.Validate(); err != nil {
		return professor.Professor{}, err
	}
	if err := deps.ProfessorStore.Save(ctx, p); err != nil {
		return professor.Professor{}, err
	}
	slog.Info("professor_event", "event", "professor_created", "professor_id", p.ID)
	return p, nil
}

// ExecuteSetProfessorActive shows or hides a professor on the public page.
// PRE: id refers to an existing professor
func ExecuteSetProfessorActive(ctx context.Context, id string, active bool, store ProfessorStoreForOrchestrator) error {
	p, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Active = active
	if err := store.Save(ctx, p); err != nil {
		return err
	}
	slog.Info("professor_event", "event", "professor_visibility_changed", "professor_id", id, "active", active)
	return nil
}

// ExecuteDeleteProfessor removes a professor.
func ExecuteDeleteProfessor(ctx context.Context, id string, store ProfessorStoreForOrchestrator) error {
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("professor_event", "event", "professor_deleted", "professor_id", id)
	return nil
}
