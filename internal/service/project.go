package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/clientdesk/clientdesk/internal/metrics"
	"github.com/clientdesk/clientdesk/internal/model"
	"github.com/clientdesk/clientdesk/internal/repository"
)

const (
	maxProjectNameLength = 128
	maxShortNameLength   = 32
	maxDescriptionLength = 2000
)

// ProjectService handles project business logic. Every operation is
// scoped to the authenticated actor: projects of other accounts behave as
// if they did not exist.
type ProjectService struct {
	store   repository.Store
	metrics metrics.Recorder
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store repository.Store, opts ...Option) *ProjectService {
	o := buildOptions(opts)
	return &ProjectService{
		store:   store,
		metrics: o.metrics,
	}
}

// CreateProjectInput defines input for creating a project.
type CreateProjectInput struct {
	AccountID   int64 // defaults to the actor
	FullName    string
	ShortName   string
	Description string
}

// Validate checks field presence and limits.
func (in CreateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.AccountID, validation.Min(int64(0))),
		validation.Field(&in.FullName, validation.Required, validation.Length(1, maxProjectNameLength)),
		validation.Field(&in.ShortName, validation.Required, validation.Length(1, maxShortNameLength)),
		validation.Field(&in.Description, validation.Length(0, maxDescriptionLength)),
	)
}

// Create adds an active project owned by the actor.
func (s *ProjectService) Create(ctx context.Context, actorID int64, input CreateProjectInput) (*model.Project, error) {
	if err := input.Validate(); err != nil {
		return nil, malformed(err)
	}

	ownerID := input.AccountID
	if ownerID == 0 {
		ownerID = actorID
	}
	if ownerID != actorID {
		return nil, ErrNotFound
	}

	project := &model.Project{
		AccountID:   ownerID,
		FullName:    input.FullName,
		ShortName:   input.ShortName,
		Description: input.Description,
		State:       model.ProjectActive,
	}

	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		owner, err := tx.GetAccountByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if !owner.Active {
			return ErrNotFound
		}
		return tx.InsertProject(ctx, project)
	})
	if err != nil {
		return nil, projectError("failed to create project", err)
	}

	s.metrics.IncProjectCreated()

	return project, nil
}

// Cancel moves an active project to cancelled. Cancelled projects and
// projects of other accounts return ErrNotFound.
func (s *ProjectService) Cancel(ctx context.Context, actorID, projectID int64) (*model.Project, error) {
	var project *model.Project
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		project, err = loadOwnedProject(ctx, tx, actorID, projectID)
		if err != nil {
			return err
		}
		if !project.IsActive() {
			return ErrNotFound
		}

		project.State = model.ProjectCancelled
		return tx.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, projectError("failed to cancel project", err)
	}

	s.metrics.IncProjectCancelled()

	return project, nil
}

// Delete removes a project in any state.
func (s *ProjectService) Delete(ctx context.Context, actorID, projectID int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := loadOwnedProject(ctx, tx, actorID, projectID); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, projectID)
	})
	if err != nil {
		return projectError("failed to delete project", err)
	}

	s.metrics.IncProjectDeleted()

	return nil
}

// ListByAccount returns all projects of the actor's account in creation order.
func (s *ProjectService) ListByAccount(ctx context.Context, actorID, accountID int64) ([]*model.Project, error) {
	if actorID != accountID {
		return nil, ErrNotFound
	}

	var projects []*model.Project
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		projects, err = tx.ListProjectsByOwner(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func loadOwnedProject(ctx context.Context, tx repository.Tx, actorID, projectID int64) (*model.Project, error) {
	project, err := tx.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.OwnedBy(actorID) {
		return nil, ErrNotFound
	}
	return project, nil
}

func projectError(msg string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrAccountNotFound):
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
