package updates

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "memberhub/internal/app/outbox"
	domainmember "memberhub/internal/domain/member"
	domainupdate "memberhub/internal/domain/update"
)

// Service handles broadcast announcements and their per-member read
// receipts: the "Site Updates" tab of the member inbox.
type Service struct {
	Updates  domainupdate.Repository
	Receipts domainupdate.ReceiptStore
	Members  domainmember.Repository
	Outbox   appoutbox.Outbox
	Logger   *slog.Logger
	Clock    func() time.Time
}

// UpdateView is an announcement joined with its author's profile and the
// caller's read flag.
type UpdateView struct {
	ID              domainupdate.ID
	Title           string
	Body            string
	PublishedAt     time.Time
	AuthorID        domainmember.ID
	AuthorName      string
	AuthorAvatarURL string
	Read            bool
}

// List returns all announcements newest first, with the caller's read state
// computed from receipt membership.
func (s *Service) List(ctx context.Context, callerID domainmember.ID) ([]UpdateView, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	updates, err := s.Updates.List(ctx)
	if err != nil {
		return nil, err
	}
	readSet, err := s.Receipts.ReadSet(ctx, callerID)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]domainmember.ID, 0, len(updates))
	seen := make(map[domainmember.ID]struct{})
	for _, u := range updates {
		if _, ok := seen[u.AuthorID]; ok {
			continue
		}
		seen[u.AuthorID] = struct{}{}
		authorIDs = append(authorIDs, u.AuthorID)
	}
	authors, err := s.Members.ByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	views := make([]UpdateView, 0, len(updates))
	for _, u := range updates {
		view := UpdateView{
			ID:          u.ID,
			Title:       u.Title,
			Body:        u.Body,
			PublishedAt: u.PublishedAt,
			AuthorID:    u.AuthorID,
		}
		if author, ok := authors[u.AuthorID]; ok {
			view.AuthorName = author.DisplayName
			view.AuthorAvatarURL = author.AvatarURL
		}
		_, view.Read = readSet[u.ID]
		views = append(views, view)
	}
	return views, nil
}

// MarkRead records a receipt for one announcement. Marking an already-read
// announcement is a no-op.
func (s *Service) MarkRead(ctx context.Context, callerID domainmember.ID, updateID domainupdate.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if _, err := s.Updates.ByID(ctx, updateID); err != nil {
		return err
	}
	return s.Receipts.Add(ctx, domainupdate.Receipt{
		UpdateID: updateID,
		MemberID: callerID,
		ReadAt:   s.now().UTC(),
	})
}

// MarkAllRead inserts receipts for every announcement the caller has not
// read yet: the set difference of all ids and the caller's read set. A
// second call finds an empty difference and inserts nothing.
func (s *Service) MarkAllRead(ctx context.Context, callerID domainmember.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	updates, err := s.Updates.List(ctx)
	if err != nil {
		return err
	}
	readSet, err := s.Receipts.ReadSet(ctx, callerID)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	missing := make([]domainupdate.Receipt, 0)
	for _, u := range updates {
		if _, ok := readSet[u.ID]; ok {
			continue
		}
		missing = append(missing, domainupdate.Receipt{UpdateID: u.ID, MemberID: callerID, ReadAt: now})
	}
	if len(missing) == 0 {
		return nil
	}
	return s.Receipts.AddAll(ctx, missing)
}

// Publish creates a new announcement.
func (s *Service) Publish(ctx context.Context, authorID domainmember.ID, title, body string) (*domainupdate.SiteUpdate, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	u, err := domainupdate.Publish(domainupdate.PublishParams{
		ID:       domainupdate.ID(uuid.NewString()),
		Title:    title,
		Body:     body,
		AuthorID: authorID,
		Now:      s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Updates.Save(ctx, u); err != nil {
		return nil, err
	}
	if err := appoutbox.Record(ctx, s.Outbox, nil, domainupdate.NewPublishedEvent(u)); err != nil && s.Logger != nil {
		s.Logger.Error("publish event not recorded", "error", err, "update_id", u.ID)
	}
	if s.Logger != nil {
		s.Logger.Info("site update published", "update_id", u.ID, "author_id", authorID)
	}
	return u, nil
}

// Delete removes an announcement and all receipts pointing at it.
func (s *Service) Delete(ctx context.Context, updateID domainupdate.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if err := s.Updates.Delete(ctx, updateID); err != nil {
		return err
	}
	return s.Receipts.DeleteByUpdate(ctx, updateID)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Updates == nil:
		return errors.New("updates: update repository required")
	case s.Receipts == nil:
		return errors.New("updates: receipt store required")
	case s.Members == nil:
		return errors.New("updates: member repository required")
	default:
		return nil
	}
}
