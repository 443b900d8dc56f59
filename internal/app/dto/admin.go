package dto

import (
	"time"

	"memberhub/internal/app/services/profiles"
)

// DirectoryMember is a row of the admin member directory.
type DirectoryMember struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Blocked     bool      `json:"blocked"`
	CreatedAt   time.Time `json:"created_at"`
}

type DirectoryPage struct {
	Items []DirectoryMember `json:"items"`
	Total int               `json:"total"`
}

func NewDirectoryPage(page *profiles.DirectoryPage) DirectoryPage {
	out := DirectoryPage{Items: make([]DirectoryMember, 0, len(page.Members)), Total: page.Total}
	for _, p := range page.Members {
		out.Items = append(out.Items, DirectoryMember{
			ID:          string(p.ID),
			Username:    p.Username,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Blocked:     p.Blocked,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}
