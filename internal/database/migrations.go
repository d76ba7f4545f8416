package database

import (
	"fmt"

	"github.com/yukikurage/stepflow-api/internal/models"
	"gorm.io/gorm"
)

// requiredIndexes lists the indexes the workflow queries depend on.
var requiredIndexes = []struct {
	model interface{}
	name  string
}{
	{&models.Step{}, "idx_steps_project_order"},
	{&models.Subtask{}, "idx_subtasks_step_order"},
	{&models.ProjectMember{}, "idx_project_members_project_user"},
	{&models.ProjectMember{}, "UserID"},
	{&models.Invitation{}, "Token"},
	{&models.Invitation{}, "ProjectID"},
	{&models.Note{}, "ProjectID"},
	{&models.Project{}, "OwnerID"},
}

// EnsureIndexes creates any index from requiredIndexes that AutoMigrate left out.
// Names are either explicit index names or field names with a single-field index tag.
func EnsureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range requiredIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
