package member

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("member: id is required")
	ErrEmailRequired       = errors.New("member: email is required")
	ErrPasswordHashMissing = errors.New("member: password hash is required")
	ErrDisplayNameRequired = errors.New("member: display name is required")
	ErrUsernameRequired    = errors.New("member: username is required")
	ErrUsernameInvalid     = errors.New("member: username may contain lowercase letters, digits, dots and dashes only")
	ErrBioTooLong          = errors.New("member: bio exceeds 500 characters")
	ErrInvalidRole         = errors.New("member: invalid role")
	ErrEmailAlreadyUsed    = errors.New("member: email already used")
	ErrUsernameAlreadyUsed = errors.New("member: username already used")
	ErrNotFound            = errors.New("member: not found")
)

const maxBioLength = 500

type ID string

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Member is a platform account: identity plus the public profile shown
// in the directory, conversation list and comments.
type Member struct {
	ID           ID
	Email        string
	Username     string
	DisplayName  string
	Bio          string
	AvatarURL    string
	PasswordHash string
	Roles        []Role
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Member, error)
	ByIDs(ctx context.Context, ids []ID) (map[ID]*Member, error)
	ByEmail(ctx context.Context, email string) (*Member, error)
	Save(ctx context.Context, m *Member) error
	List(ctx context.Context, params ListParams) ([]*Member, int, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

func New(params CreateParams) (*Member, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}
	username, err := NormalizeUsername(params.Username)
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	roles, err := normalizeRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleMember}
	}

	return &Member{
		ID:           ID(id),
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: params.PasswordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

type ProfileUpdate struct {
	DisplayName *string
	Username    *string
	Bio         *string
}

func (m *Member) ApplyProfileUpdate(update ProfileUpdate, now time.Time) error {
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return ErrDisplayNameRequired
		}
		m.DisplayName = name
	}
	if update.Username != nil {
		username, err := NormalizeUsername(*update.Username)
		if err != nil {
			return err
		}
		m.Username = username
	}
	if update.Bio != nil {
		bio := strings.TrimSpace(*update.Bio)
		if len([]rune(bio)) > maxBioLength {
			return ErrBioTooLong
		}
		m.Bio = bio
	}
	m.touch(now)
	return nil
}

func (m *Member) SetAvatarURL(url string, now time.Time) {
	m.AvatarURL = strings.TrimSpace(url)
	m.touch(now)
}

func (m *Member) SetBlocked(blocked bool, now time.Time) {
	m.Blocked = blocked
	m.touch(now)
}

func (m *Member) HasRole(role Role) bool {
	role = normalizeRole(role)
	if role == "" {
		return false
	}
	for _, current := range m.Roles {
		if normalizeRole(current) == role {
			return true
		}
	}
	return false
}

func (m *Member) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	m.UpdatedAt = now.UTC()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if username == "" {
		return "", ErrUsernameRequired
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return "", ErrUsernameInvalid
		}
	}
	return username, nil
}

func normalizeRoles(roles []Role) ([]Role, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	seen := make(map[Role]struct{}, len(roles))
	normalized := make([]Role, 0, len(roles))
	for _, role := range roles {
		role = normalizeRole(role)
		if role == "" {
			return nil, ErrInvalidRole
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized, nil
}

func normalizeRole(role Role) Role {
	switch Role(strings.ToLower(strings.TrimSpace(string(role)))) {
	case RoleMember:
		return RoleMember
	case RoleAdmin:
		return RoleAdmin
	default:
		return ""
	}
}
