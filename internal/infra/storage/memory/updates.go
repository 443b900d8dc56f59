package memory

import (
	"context"
	"sort"
	"sync"

	domainmember "memberhub/internal/domain/member"
	domainupdate "memberhub/internal/domain/update"
)

type UpdateRepository struct {
	mu   sync.RWMutex
	byID map[domainupdate.ID]*domainupdate.SiteUpdate
}

func NewUpdateRepository() *UpdateRepository {
	return &UpdateRepository{byID: make(map[domainupdate.ID]*domainupdate.SiteUpdate)}
}

func (r *UpdateRepository) Save(ctx context.Context, u *domainupdate.SiteUpdate) error {
	if u == nil {
		return domainupdate.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyUpdate := *u
	r.byID[u.ID] = &copyUpdate
	return nil
}

func (r *UpdateRepository) ByID(ctx context.Context, id domainupdate.ID) (*domainupdate.SiteUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.byID[id]; ok {
		copyUpdate := *u
		return &copyUpdate, nil
	}
	return nil, domainupdate.ErrNotFound
}

func (r *UpdateRepository) List(ctx context.Context) ([]*domainupdate.SiteUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainupdate.SiteUpdate, 0, len(r.byID))
	for _, u := range r.byID {
		copyUpdate := *u
		out = append(out, &copyUpdate)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

func (r *UpdateRepository) Delete(ctx context.Context, id domainupdate.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domainupdate.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type receiptKey struct {
	update domainupdate.ID
	member domainmember.ID
}

type ReceiptStore struct {
	mu       sync.RWMutex
	receipts map[receiptKey]domainupdate.Receipt
}

func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{receipts: make(map[receiptKey]domainupdate.Receipt)}
}

func (s *ReceiptStore) Add(ctx context.Context, receipt domainupdate.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := receiptKey{update: receipt.UpdateID, member: receipt.MemberID}
	if _, ok := s.receipts[key]; ok {
		return nil
	}
	s.receipts[key] = receipt
	return nil
}

func (s *ReceiptStore) AddAll(ctx context.Context, receipts []domainupdate.Receipt) error {
	for _, receipt := range receipts {
		if err := s.Add(ctx, receipt); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReceiptStore) ReadSet(ctx context.Context, memberID domainmember.ID) (map[domainupdate.ID]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domainupdate.ID]struct{})
	for key := range s.receipts {
		if key.member == memberID {
			out[key.update] = struct{}{}
		}
	}
	return out, nil
}

func (s *ReceiptStore) DeleteByUpdate(ctx context.Context, updateID domainupdate.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.receipts {
		if key.update == updateID {
			delete(s.receipts, key)
		}
	}
	return nil
}

// Count reports stored receipts, used by tests to assert idempotency.
func (s *ReceiptStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.receipts)
}

var _ domainupdate.Repository = (*UpdateRepository)(nil)
var _ domainupdate.ReceiptStore = (*ReceiptStore)(nil)
