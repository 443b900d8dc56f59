package moderation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "memberhub/internal/app/outbox"
	domaincomment "memberhub/internal/domain/comment"
	domainmember "memberhub/internal/domain/member"
)

// Service covers member comment submission and the admin moderation queue.
type Service struct {
	Comments domaincomment.Repository
	Members  domainmember.Repository
	Outbox   appoutbox.Outbox
	Logger   *slog.Logger
	Clock    func() time.Time
}

// CommentView joins a comment with its author's profile for the queue UI.
type CommentView struct {
	ID              domaincomment.ID
	AuthorID        domainmember.ID
	AuthorName      string
	AuthorAvatarURL string
	Body            string
	Context         domaincomment.Context
	ContextRefID    string
	Status          domaincomment.Status
	ModeratorNote   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SubmitParams struct {
	AuthorID     domainmember.ID
	Body         string
	Context      string
	ContextRefID string
}

func (s *Service) Submit(ctx context.Context, params SubmitParams) (*domaincomment.Comment, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	commentContext, err := domaincomment.ParseContext(params.Context)
	if err != nil {
		return nil, err
	}
	c, err := domaincomment.Submit(domaincomment.SubmitParams{
		ID:           domaincomment.ID(uuid.NewString()),
		AuthorID:     params.AuthorID,
		Body:         params.Body,
		Context:      commentContext,
		ContextRefID: params.ContextRefID,
		Now:          s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Comments.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := appoutbox.Record(ctx, s.Outbox, nil, domaincomment.NewSubmittedEvent(c)); err != nil && s.Logger != nil {
		s.Logger.Error("comment event not recorded", "error", err, "comment_id", c.ID)
	}
	return c, nil
}

type ListParams struct {
	Status  string
	Context string
	Limit   int
	Offset  int
}

func (s *Service) List(ctx context.Context, params ListParams) ([]CommentView, int, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, 0, err
	}
	filter := domaincomment.ListParams{Limit: params.Limit, Offset: params.Offset}
	if params.Status != "" {
		status, err := domaincomment.ParseStatus(params.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = status
	}
	if params.Context != "" {
		commentContext, err := domaincomment.ParseContext(params.Context)
		if err != nil {
			return nil, 0, err
		}
		filter.Context = commentContext
	}
	comments, total, err := s.Comments.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	authorIDs := make([]domainmember.ID, 0, len(comments))
	seen := make(map[domainmember.ID]struct{})
	for _, c := range comments {
		if _, ok := seen[c.AuthorID]; ok {
			continue
		}
		seen[c.AuthorID] = struct{}{}
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.Members.ByIDs(ctx, authorIDs)
	if err != nil {
		return nil, 0, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		view := CommentView{
			ID:            c.ID,
			AuthorID:      c.AuthorID,
			Body:          c.Body,
			Context:       c.Context,
			ContextRefID:  c.ContextRefID,
			Status:        c.Status,
			ModeratorNote: c.ModeratorNote,
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		}
		if author, ok := authors[c.AuthorID]; ok {
			view.AuthorName = author.DisplayName
			view.AuthorAvatarURL = author.AvatarURL
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (s *Service) Approve(ctx context.Context, commentID domaincomment.ID) (*domaincomment.Comment, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	c, err := s.Comments.ByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	c.Approve(s.now())
	if err := s.Comments.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Reject(ctx context.Context, commentID domaincomment.ID, note string) (*domaincomment.Comment, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	c, err := s.Comments.ByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	c.Reject(note, s.now())
	if err := s.Comments.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, commentID domaincomment.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	return s.Comments.Delete(ctx, commentID)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Comments == nil:
		return errors.New("moderation: comment repository required")
	case s.Members == nil:
		return errors.New("moderation: member repository required")
	default:
		return nil
	}
}
