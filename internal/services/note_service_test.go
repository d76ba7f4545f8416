package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/utils"
)

type NoteServiceTestSuite struct {
	serviceSuite
}

func TestNoteService(t *testing.T) {
	suite.Run(t, new(NoteServiceTestSuite))
}

func (s *NoteServiceTestSuite) TestLifecycle() {
	project := s.createProject("Launch")
	s.addMember(project.ID, viewerID, models.PermissionView)

	note, err := s.notes.Create(s.ctx, CreateNoteInput{ProjectID: project.ID, CallerID: ownerID, Content: "  kickoff notes  "})
	s.Require().NoError(err)
	s.Equal("kickoff notes", note.Content)

	_, err = s.notes.Create(s.ctx, CreateNoteInput{ProjectID: project.ID, CallerID: viewerID, Content: "hi"})
	s.ErrorIs(err, ErrUnauthorized)

	notes, total, err := s.notes.List(s.ctx, viewerID, project.ID, utils.PaginationParams{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(notes, 1)

	notes, total, err = s.notes.List(s.ctx, strangerID, project.ID, utils.PaginationParams{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(notes)

	_, err = s.notes.Update(s.ctx, UpdateNoteInput{NoteID: note.ID, CallerID: viewerID, Content: "hijack"})
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.notes.Update(s.ctx, UpdateNoteInput{NoteID: note.ID, CallerID: strangerID, Content: "hijack"})
	s.ErrorIs(err, ErrNoteNotFound)

	updated, err := s.notes.Update(s.ctx, UpdateNoteInput{NoteID: note.ID, CallerID: ownerID, Content: "revised"})
	s.Require().NoError(err)
	s.Equal("revised", updated.Content)

	s.ErrorIs(s.notes.Delete(s.ctx, viewerID, note.ID), ErrUnauthorized)
	s.Require().NoError(s.notes.Delete(s.ctx, ownerID, note.ID))
	s.ErrorIs(s.notes.Delete(s.ctx, ownerID, note.ID), ErrNoteNotFound)
}

func (s *NoteServiceTestSuite) TestModifyMemberWritesWithPolicy() {
	project := s.createProject("Launch")
	s.addMember(project.ID, modifierID, models.PermissionModify)
	s.wire(true, nil)

	note, err := s.notes.Create(s.ctx, CreateNoteInput{ProjectID: project.ID, CallerID: modifierID, Content: "from a member"})
	s.Require().NoError(err)

	// the owner cannot delete someone else's note
	s.ErrorIs(s.notes.Delete(s.ctx, ownerID, note.ID), ErrUnauthorized)
}

func (s *NoteServiceTestSuite) TestListPaginates() {
	project := s.createProject("Launch")
	for _, content := range []string{"one", "two", "three"} {
		_, err := s.notes.Create(s.ctx, CreateNoteInput{ProjectID: project.ID, CallerID: ownerID, Content: content})
		s.Require().NoError(err)
	}

	notes, total, err := s.notes.List(s.ctx, ownerID, project.ID, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(notes, 1)
}
