package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainauth "memberhub/internal/domain/auth"
	domainmember "memberhub/internal/domain/member"
)

// MemberRepository stores members in memory. Not suitable for production.
type MemberRepository struct {
	mu         sync.RWMutex
	byID       map[domainmember.ID]*domainmember.Member
	byEmail    map[string]domainmember.ID
	byUsername map[string]domainmember.ID
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{
		byID:       make(map[domainmember.ID]*domainmember.Member),
		byEmail:    make(map[string]domainmember.ID),
		byUsername: make(map[string]domainmember.ID),
	}
}

func (r *MemberRepository) ByID(ctx context.Context, id domainmember.ID) (*domainmember.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.byID[id]; ok {
		return cloneMember(m), nil
	}
	return nil, domainmember.ErrNotFound
}

func (r *MemberRepository) ByIDs(ctx context.Context, ids []domainmember.ID) (map[domainmember.ID]*domainmember.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainmember.ID]*domainmember.Member, len(ids))
	for _, id := range ids {
		if m, ok := r.byID[id]; ok {
			out[id] = cloneMember(m)
		}
	}
	return out, nil
}

func (r *MemberRepository) ByEmail(ctx context.Context, email string) (*domainmember.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainmember.NormalizeEmail(email)]
	if !ok {
		return nil, domainmember.ErrNotFound
	}
	if m, ok := r.byID[id]; ok {
		return cloneMember(m), nil
	}
	return nil, domainmember.ErrNotFound
}

func (r *MemberRepository) Save(ctx context.Context, m *domainmember.Member) error {
	if m == nil {
		return domainmember.ErrIDRequired
	}
	id := strings.TrimSpace(string(m.ID))
	if id == "" {
		return domainmember.ErrIDRequired
	}
	emailKey := domainmember.NormalizeEmail(m.Email)
	if emailKey == "" {
		return domainmember.ErrEmailRequired
	}
	usernameKey := strings.ToLower(strings.TrimSpace(m.Username))
	if usernameKey == "" {
		return domainmember.ErrUsernameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byEmail[emailKey]; ok && existingID != m.ID {
		return domainmember.ErrEmailAlreadyUsed
	}
	if existingID, ok := r.byUsername[usernameKey]; ok && existingID != m.ID {
		return domainmember.ErrUsernameAlreadyUsed
	}
	if previous, ok := r.byID[m.ID]; ok {
		delete(r.byEmail, domainmember.NormalizeEmail(previous.Email))
		delete(r.byUsername, strings.ToLower(previous.Username))
	}
	r.byEmail[emailKey] = m.ID
	r.byUsername[usernameKey] = m.ID
	r.byID[m.ID] = cloneMember(m)
	return nil
}

func (r *MemberRepository) List(ctx context.Context, params domainmember.ListParams) ([]*domainmember.Member, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	query := strings.ToLower(strings.TrimSpace(params.Query))
	matched := make([]*domainmember.Member, 0, len(r.byID))
	for _, m := range r.byID {
		if query != "" &&
			!strings.Contains(strings.ToLower(m.DisplayName), query) &&
			!strings.Contains(strings.ToLower(m.Username), query) &&
			!strings.Contains(strings.ToLower(m.Email), query) {
			continue
		}
		matched = append(matched, cloneMember(m))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
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

func cloneMember(m *domainmember.Member) *domainmember.Member {
	if m == nil {
		return nil
	}
	copyMember := *m
	copyMember.Roles = append([]domainmember.Role(nil), m.Roles...)
	return &copyMember
}

// SessionStore keeps bearer sessions in memory.
type SessionStore struct {
	mu          sync.RWMutex
	tokens      map[domainauth.Token]*domainauth.Session
	memberIndex map[domainmember.ID]map[domainauth.Token]struct{}
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tokens:      make(map[domainauth.Token]*domainauth.Session),
		memberIndex: make(map[domainmember.ID]map[domainauth.Token]struct{}),
	}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[session.Token] = cloneSession(session)
	if _, ok := s.memberIndex[session.MemberID]; !ok {
		s.memberIndex[session.MemberID] = make(map[domainauth.Token]struct{})
	}
	s.memberIndex[session.MemberID][session.Token] = struct{}{}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	session, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.tokens[token]
	if !ok {
		return nil
	}
	delete(s.tokens, token)
	if index, ok := s.memberIndex[session.MemberID]; ok {
		delete(index, token)
		if len(index) == 0 {
			delete(s.memberIndex, session.MemberID)
		}
	}
	return nil
}

func (s *SessionStore) DeleteByMember(ctx context.Context, memberID domainmember.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.memberIndex[memberID]
	if !ok {
		return nil
	}
	for token := range index {
		delete(s.tokens, token)
	}
	delete(s.memberIndex, memberID)
	return nil
}

func cloneSession(s *domainauth.Session) *domainauth.Session {
	if s == nil {
		return nil
	}
	copySession := *s
	copySession.Roles = append([]domainmember.Role(nil), s.Roles...)
	return &copySession
}

var _ domainmember.Repository = (*MemberRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
