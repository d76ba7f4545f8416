package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/stepflow-api/internal/constants"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"github.com/yukikurage/stepflow-api/internal/utils"
	"gorm.io/gorm"
)

// DetailsStatusInvalid is reported for tokens that match no invitation.
const DetailsStatusInvalid = "invalid"

// InvitationService issues invitation tokens and converts them into memberships exactly once
type InvitationService struct {
	store  repository.Store
	access *AccessControl
	clock  Clock
	ttl    time.Duration
}

// NewInvitationService creates a new InvitationService. A non-positive ttl falls back to seven days.
func NewInvitationService(store repository.Store, access *AccessControl, clock Clock, ttl time.Duration) *InvitationService {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = constants.DefaultInvitationTTL
	}
	return &InvitationService{
		store:  store,
		access: access,
		clock:  clock,
		ttl:    ttl,
	}
}

// CreateInvitationInput represents input for inviting a collaborator
type CreateInvitationInput struct {
	ProjectID  string
	CallerID   string
	Permission models.Permission `validate:"required,oneof=view modify"`
}

// InvitationDetails is the public view of an invitation token.
// Status is the stored status, or "invalid" when the token is unknown.
type InvitationDetails struct {
	Status             string
	IsExpired          bool
	ProjectID          string
	ProjectName        string
	ProjectDescription string
	ProjectColor       string
	InviterName        string
	Permission         models.Permission
	ExpiresAt          time.Time
}

// InvitationView is an invitation with its derived expiry flag
type InvitationView struct {
	models.Invitation
	IsExpired bool
}

// Create issues a pending invitation for a project the caller owns
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.Invitation, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(constants.InvitationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	var invitation *models.Invitation
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, _, err := s.access.authorizeProject(ctx, tx, input.CallerID, input.ProjectID, ActionManageProject); err != nil {
			return err
		}

		invitation = &models.Invitation{
			ProjectID:  input.ProjectID,
			InvitedBy:  input.CallerID,
			Permission: input.Permission,
			Token:      token,
			ExpiresAt:  s.clock.Now().Add(s.ttl),
			Status:     models.InvitationPending,
		}
		if err := tx.Invitations().Create(ctx, invitation); err != nil {
			return fmt.Errorf("failed to create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return invitation, nil
}

// Details resolves a token for display. Expiry is evaluated here and never written back.
func (s *InvitationService) Details(ctx context.Context, token string) (*InvitationDetails, error) {
	invitation, err := s.store.Invitations().FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InvitationDetails{Status: DetailsStatusInvalid}, nil
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	project, err := s.store.Projects().FindByID(ctx, invitation.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InvitationDetails{Status: DetailsStatusInvalid}, nil
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	details := &InvitationDetails{
		Status:             string(invitation.Status),
		IsExpired:          invitation.ExpiredAt(s.clock.Now()),
		ProjectID:          project.ID,
		ProjectName:        project.Name,
		ProjectDescription: project.Description,
		ProjectColor:       project.Color,
		Permission:         invitation.Permission,
		ExpiresAt:          invitation.ExpiresAt,
	}

	inviter, err := s.store.Users().FindByID(ctx, invitation.InvitedBy)
	switch {
	case err == nil:
		details.InviterName = inviter.Name
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find inviter: %w", err)
	}

	return details, nil
}

// Accept turns a pending, unexpired invitation into a membership for the caller
// and returns the project ID. The owner accepting their own invitation gains nothing
// but still consumes it.
func (s *InvitationService) Accept(ctx context.Context, callerID, token string) (string, error) {
	if err := requireCaller(callerID); err != nil {
		return "", err
	}

	var projectID string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		invitation, err := s.findAcceptable(ctx, tx, token)
		if err != nil {
			return err
		}

		project, err := tx.Projects().FindByID(ctx, invitation.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationNotAcceptable
			}
			return fmt.Errorf("failed to find project: %w", err)
		}

		now := s.clock.Now()
		changed, err := tx.Invitations().TransitionFromPending(ctx, invitation.ID, repository.InvitationTransition{
			Status:     models.InvitationAccepted,
			AcceptedBy: &callerID,
			AcceptedAt: &now,
		})
		if err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}
		if !changed {
			return ErrInvitationNotAcceptable
		}

		if project.OwnerID != callerID {
			if _, err := tx.Members().AddIfAbsent(ctx, &models.ProjectMember{
				ProjectID:  project.ID,
				UserID:     callerID,
				Permission: invitation.Permission,
				AddedAt:    now,
				AddedBy:    invitation.InvitedBy,
			}); err != nil {
				return fmt.Errorf("failed to add member: %w", err)
			}
		}

		projectID = project.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	return projectID, nil
}

// Decline closes a pending, unexpired invitation without creating a membership
func (s *InvitationService) Decline(ctx context.Context, callerID, token string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		invitation, err := s.findAcceptable(ctx, tx, token)
		if err != nil {
			return err
		}

		changed, err := tx.Invitations().TransitionFromPending(ctx, invitation.ID, repository.InvitationTransition{
			Status: models.InvitationDeclined,
		})
		if err != nil {
			return fmt.Errorf("failed to decline invitation: %w", err)
		}
		if !changed {
			return ErrInvitationNotAcceptable
		}
		return nil
	})
}

// ListByProject lists a project's invitations for its owner. Anyone else gets an empty list.
func (s *InvitationService) ListByProject(ctx context.Context, callerID, projectID string) ([]InvitationView, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	_, access, err := s.access.loadProject(ctx, s.store, callerID, projectID, false)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return []InvitationView{}, nil
		}
		return nil, err
	}
	if s.access.Authorize(access, ActionManageProject) != nil {
		return []InvitationView{}, nil
	}

	invitations, err := s.store.Invitations().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	now := s.clock.Now()
	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		views = append(views, InvitationView{Invitation: inv, IsExpired: inv.ExpiredAt(now)})
	}
	return views, nil
}

func (s *InvitationService) findAcceptable(ctx context.Context, tx repository.Store, token string) (*models.Invitation, error) {
	invitation, err := tx.Invitations().FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.Status != models.InvitationPending || invitation.ExpiredAt(s.clock.Now()) {
		return nil, ErrInvitationNotAcceptable
	}
	return invitation, nil
}
