package repository

import (
	"context"

	"github.com/yukikurage/stepflow-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// Create creates a new invitation
func (r *GormInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindByToken finds an invitation by its token
func (r *GormInvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListByProject lists a project's invitations, newest first
func (r *GormInvitationRepository) ListByProject(ctx context.Context, projectID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// TransitionFromPending flips the status of a pending invitation.
// The status guard lives in the WHERE clause so two racing callers cannot both win.
func (r *GormInvitationRepository) TransitionFromPending(ctx context.Context, id string, t InvitationTransition) (bool, error) {
	fields := map[string]interface{}{
		"status": t.Status,
	}
	if t.AcceptedBy != nil {
		fields["accepted_by"] = *t.AcceptedBy
	}
	if t.AcceptedAt != nil {
		fields["accepted_at"] = *t.AcceptedAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteByProject deletes every invitation of a project
func (r *GormInvitationRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Invitation{}).Error
}
