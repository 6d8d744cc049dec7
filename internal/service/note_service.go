package service

import (
	"context"
	"log/slog"

	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/repository"
)

// NoteService manages recommendations attached to questions.
type NoteService struct {
	posts       *PostService
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	push        PushNotifier
}

func NewNoteService(posts *PostService) *NoteService {
	return &NoteService{
		posts:       posts,
		postRepo:    posts.postRepo,
		commentRepo: posts.commentRepo,
		push:        posts.push,
	}
}

// ListNotes lists the notes of a question together with its best note id.
func (s *NoteService) ListNotes(ctx context.Context, questionID, viewerID uint, page repository.Page) ([]models.Post, int64, *uint, error) {
	question, err := s.posts.requireQuestion(ctx, questionID, viewerID)
	if err != nil {
		return nil, 0, nil, err
	}
	notes, total, err := s.postRepo.List(ctx, repository.PostFilter{NoteOf: question.ID}, viewerID, page)
	if err != nil {
		return nil, 0, nil, err
	}
	return notes, total, question.BestNoteID, nil
}

// CreateNote creates a recommendation owned by the caller and links it to
// the question. It fires both the new-post and the new-comment push.
func (s *NoteService) CreateNote(ctx context.Context, questionID uint, in CreatePostInput) (*models.Post, error) {
	question, err := s.posts.requireQuestion(ctx, questionID, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if in.TypeContent == nil || !models.PostType(*in.TypeContent).IsNote() {
		return nil, models.NewValidationError("typeContent must be 1 or 2 for a note")
	}

	note, err := s.posts.create(ctx, in, models.PostTypePositive)
	if err != nil {
		return nil, err
	}
	if _, err := s.commentRepo.AttachNote(ctx, in.AuthorID, question.ID, note.ID); err != nil {
		// A note only exists attached to its question.
		if derr := s.postRepo.Delete(context.WithoutCancel(ctx), note.ID); derr != nil {
			middleware.Logger.ErrorContext(ctx, "orphan note cleanup failed",
				slog.Uint64("note_id", uint64(note.ID)), slog.String("error", derr.Error()))
		}
		return nil, err
	}

	if s.push != nil {
		s.push.PostCreated(ctx, note, &note.Author)
	}
	s.posts.notifyNoteLink(ctx, question, note)
	return note, nil
}

// GetNote returns noteID when it is attached to the question.
func (s *NoteService) GetNote(ctx context.Context, questionID, noteID, viewerID uint) (*models.Post, error) {
	question, err := s.posts.requireQuestion(ctx, questionID, viewerID)
	if err != nil {
		return nil, err
	}
	attached, err := s.postRepo.IsNoteOf(ctx, question.ID, noteID)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, models.NewNotFoundError("Note", noteID)
	}
	return s.postRepo.GetByID(ctx, noteID, viewerID)
}

// BestNoteOf returns the best note id of a question, for rendering isBest.
func (s *NoteService) BestNoteOf(ctx context.Context, questionID uint) (*uint, error) {
	question, err := s.posts.requireQuestion(ctx, questionID, 0)
	if err != nil {
		return nil, err
	}
	return question.BestNoteID, nil
}

// UpdateNote edits an attached note. Only its author may do so and the
// type has to stay a recommendation.
func (s *NoteService) UpdateNote(ctx context.Context, questionID uint, in UpdatePostInput) (*models.Post, error) {
	note, err := s.GetNote(ctx, questionID, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own notes")
	}
	if in.TypeContent != nil && !models.PostType(*in.TypeContent).IsNote() {
		return nil, models.NewValidationError("typeContent must be 1 or 2 for a note")
	}
	return s.posts.applyUpdate(ctx, note, in)
}

// SetBest marks noteID as the best answer. Only the question author may
// choose, and the note must be attached to the question.
func (s *NoteService) SetBest(ctx context.Context, userID, questionID, noteID uint) (*models.Post, error) {
	question, err := s.posts.requireQuestion(ctx, questionID, userID)
	if err != nil {
		return nil, err
	}
	if question.AuthorID != userID {
		return nil, models.NewForbiddenError("Only the question author can choose the best note")
	}
	attached, err := s.postRepo.IsNoteOf(ctx, question.ID, noteID)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, models.NewNotFoundError("Note", noteID)
	}
	if err := s.postRepo.SetBestNote(ctx, question.ID, &noteID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, question.ID, userID)
}

// ClearBest unsets the best note of a question.
func (s *NoteService) ClearBest(ctx context.Context, userID, questionID uint) (*models.Post, error) {
	question, err := s.posts.requireQuestion(ctx, questionID, userID)
	if err != nil {
		return nil, err
	}
	if question.AuthorID != userID {
		return nil, models.NewForbiddenError("Only the question author can choose the best note")
	}
	if err := s.postRepo.SetBestNote(ctx, question.ID, nil); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, question.ID, userID)
}
