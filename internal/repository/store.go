package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Projects() ProjectRepository {
	return &GormProjectRepository{db: s.db}
}

func (s *GormStore) Steps() StepRepository {
	return &GormStepRepository{db: s.db}
}

func (s *GormStore) Subtasks() SubtaskRepository {
	return &GormSubtaskRepository{db: s.db}
}

func (s *GormStore) Members() MemberRepository {
	return &GormMemberRepository{db: s.db}
}

func (s *GormStore) Invitations() InvitationRepository {
	return &GormInvitationRepository{db: s.db}
}

func (s *GormStore) Notes() NoteRepository {
	return &GormNoteRepository{db: s.db}
}

func (s *GormStore) Users() UserRepository {
	return &GormUserRepository{db: s.db}
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
