package repository

import (
	"context"
	"time"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/utils"
)

// Store groups the repositories and runs multi-record writes atomically.
type Store interface {
	Projects() ProjectRepository
	Steps() StepRepository
	Subtasks() SubtaskRepository
	Members() MemberRepository
	Invitations() InvitationRepository
	Notes() NoteRepository
	Users() UserRepository

	// Transaction runs fn with a Store bound to a single transaction.
	// Any error returned by fn rolls back every write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// FindByIDForUpdate finds a project by ID and locks its row until the
	// surrounding transaction ends. Used to serialize per-project structural changes.
	FindByIDForUpdate(ctx context.Context, id string) (*models.Project, error)

	// FindByIDs returns the projects that still exist among ids
	FindByIDs(ctx context.Context, ids []string) ([]models.Project, error)

	// ListByOwner lists the projects owned by a user
	ListByOwner(ctx context.Context, ownerID string) ([]models.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a single project row
	Delete(ctx context.Context, id string) error
}

// StepRepository defines the interface for step data access
type StepRepository interface {
	Create(ctx context.Context, step *models.Step) error

	FindByID(ctx context.Context, id string) (*models.Step, error)

	// FindByOrder finds the step at a given order within a project
	FindByOrder(ctx context.Context, projectID string, order int) (*models.Step, error)

	// ListByProject lists a project's steps ordered by order ascending
	ListByProject(ctx context.Context, projectID string) ([]models.Step, error)

	// ListByIDs lists steps by ID
	ListByIDs(ctx context.Context, ids []string) ([]models.Step, error)

	CountByProject(ctx context.Context, projectID string) (int64, error)

	// UpdateFields patches the given columns of one step
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error

	// ResetAfter marks every step after order as incomplete and locked
	ResetAfter(ctx context.Context, projectID string, order int) error

	Delete(ctx context.Context, id string) error

	DeleteByIDs(ctx context.Context, ids []string) error
}

// SubtaskRepository defines the interface for subtask data access
type SubtaskRepository interface {
	Create(ctx context.Context, subtask *models.Subtask) error

	FindByID(ctx context.Context, id string) (*models.Subtask, error)

	// ListByStep lists a step's subtasks ordered by order ascending
	ListByStep(ctx context.Context, stepID string) ([]models.Subtask, error)

	// ListByStepIDs lists subtasks of several steps ordered by step then order
	ListByStepIDs(ctx context.Context, stepIDs []string) ([]models.Subtask, error)

	CountByStep(ctx context.Context, stepID string) (int64, error)

	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error

	// ResetCompletedByStep marks every completed subtask of a step as incomplete
	ResetCompletedByStep(ctx context.Context, stepID string) error

	Delete(ctx context.Context, id string) error

	DeleteByStepIDs(ctx context.Context, stepIDs []string) error
}

// MemberRepository defines the interface for project membership data access
type MemberRepository interface {
	// Find finds the membership of a user in a project
	Find(ctx context.Context, projectID, userID string) (*models.ProjectMember, error)

	// AddIfAbsent inserts member unless (project, user) already exists.
	// It reports whether a row was inserted.
	AddIfAbsent(ctx context.Context, member *models.ProjectMember) (bool, error)

	ListByProject(ctx context.Context, projectID string) ([]models.ProjectMember, error)

	ListByUser(ctx context.Context, userID string) ([]models.ProjectMember, error)

	Remove(ctx context.Context, projectID, userID string) error

	DeleteByProject(ctx context.Context, projectID string) error
}

// InvitationTransition describes a one-way status change from pending.
type InvitationTransition struct {
	Status     models.InvitationStatus
	AcceptedBy *string
	AcceptedAt *time.Time
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error

	FindByToken(ctx context.Context, token string) (*models.Invitation, error)

	ListByProject(ctx context.Context, projectID string) ([]models.Invitation, error)

	// TransitionFromPending applies t only if the invitation is still pending.
	// It reports whether the row was changed.
	TransitionFromPending(ctx context.Context, id string, t InvitationTransition) (bool, error)

	DeleteByProject(ctx context.Context, projectID string) error
}

// NoteRepository defines the interface for note data access
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error

	FindByID(ctx context.Context, id string) (*models.Note, error)

	// ListByProject lists a project's notes newest first with pagination
	ListByProject(ctx context.Context, projectID string, params utils.PaginationParams) ([]models.Note, int64, error)

	Update(ctx context.Context, note *models.Note) error

	Delete(ctx context.Context, id string) error

	DeleteByProject(ctx context.Context, projectID string) error
}

// UserRepository defines the interface for user profile data access
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)

	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// Upsert creates the profile or refreshes its display fields
	Upsert(ctx context.Context, user *models.User) error
}
