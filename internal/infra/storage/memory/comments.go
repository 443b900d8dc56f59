package memory

import (
	"context"
	"sort"
	"sync"

	domaincomment "memberhub/internal/domain/comment"
)

type CommentRepository struct {
	mu   sync.RWMutex
	byID map[domaincomment.ID]*domaincomment.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{byID: make(map[domaincomment.ID]*domaincomment.Comment)}
}

func (r *CommentRepository) Save(ctx context.Context, c *domaincomment.Comment) error {
	if c == nil {
		return domaincomment.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyComment := *c
	r.byID[c.ID] = &copyComment
	return nil
}

func (r *CommentRepository) ByID(ctx context.Context, id domaincomment.ID) (*domaincomment.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byID[id]; ok {
		copyComment := *c
		return &copyComment, nil
	}
	return nil, domaincomment.ErrNotFound
}

func (r *CommentRepository) List(ctx context.Context, params domaincomment.ListParams) ([]*domaincomment.Comment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*domaincomment.Comment, 0, len(r.byID))
	for _, c := range r.byID {
		if params.Status != "" && c.Status != params.Status {
			continue
		}
		if params.Context != "" && c.Context != params.Context {
			continue
		}
		copyComment := *c
		matched = append(matched, &copyComment)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	matched = matched[offset:]
	if params.Limit > 0 && params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}
	return matched, total, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id domaincomment.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domaincomment.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ domaincomment.Repository = (*CommentRepository)(nil)
