package dto

import (
	"time"

	"memberhub/internal/app/services/profiles"
	domainmember "memberhub/internal/domain/member"
)

// Profile is the public shape of a member account.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewProfile(p *profiles.Profile) Profile {
	return Profile{
		ID:          string(p.ID),
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt,
	}
}

// Account is the caller's own view, including the private email.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewAccount(m *domainmember.Member) Account {
	roles := make([]string, 0, len(m.Roles))
	for _, r := range m.Roles {
		roles = append(roles, string(r))
	}
	return Account{
		ID:          string(m.ID),
		Email:       m.Email,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Bio:         m.Bio,
		AvatarURL:   m.AvatarURL,
		Roles:       roles,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type AuthResponse struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

func NewAuthResponse(m *domainmember.Member, token string) AuthResponse {
	return AuthResponse{Token: token, Account: NewAccount(m)}
}
