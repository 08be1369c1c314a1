package service

import (
	"context"
	"errors"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/note"
	"github.com/parley/parley/internal/domain/uuid"
)

// NotePage — страница заметок с общим количеством.
type NotePage struct {
	Items []*note.Note
	Total int
}

// NoteService управляет личными заметками. Заметки строго приватны:
// чужая заметка неотличима от несуществующей.
type NoteService struct {
	notes note.Repository
}

// NewNoteService создаёт новый NoteService.
func NewNoteService(notes note.Repository) *NoteService {
	return &NoteService{notes: notes}
}

// Create создает заметку.
func (s *NoteService) Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*note.Note, error) {
	n, err := note.NewNote(ownerID, title, content)
	if err != nil {
		return nil, err
	}
	if err = s.notes.Insert(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Get возвращает заметку владельца.
func (s *NoteService) Get(ctx context.Context, ownerID, noteID uuid.UUID) (*note.Note, error) {
	n, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	if n.CreatedByID() != ownerID {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

// List возвращает страницу заметок владельца.
func (s *NoteService) List(ctx context.Context, ownerID uuid.UUID, skip, limit int) (*NotePage, error) {
	notes, total, err := s.notes.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, err
	}
	return &NotePage{Items: notes, Total: total}, nil
}

// Update изменяет заметку владельца.
func (s *NoteService) Update(
	ctx context.Context,
	ownerID, noteID uuid.UUID,
	title, content string,
) (*note.Note, error) {
	n, err := s.Get(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	if err = n.Update(title, content); err != nil {
		return nil, err
	}
	if err = s.notes.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete удаляет заметку владельца.
func (s *NoteService) Delete(ctx context.Context, ownerID, noteID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, noteID); err != nil {
		return err
	}
	return s.notes.DeleteByID(ctx, noteID)
}
