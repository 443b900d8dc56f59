package dto

import (
	"time"

	updatessvc "memberhub/internal/app/services/updates"
	domainupdate "memberhub/internal/domain/update"
)

type SiteUpdate struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	Read            bool      `json:"read"`
}

func NewSiteUpdate(view updatessvc.UpdateView) SiteUpdate {
	return SiteUpdate{
		ID:              string(view.ID),
		Title:           view.Title,
		Body:            view.Body,
		AuthorID:        string(view.AuthorID),
		AuthorName:      view.AuthorName,
		AuthorAvatarURL: view.AuthorAvatarURL,
		PublishedAt:     view.PublishedAt,
		Read:            view.Read,
	}
}

func NewSiteUpdateFromDomain(u *domainupdate.SiteUpdate) SiteUpdate {
	return SiteUpdate{
		ID:          string(u.ID),
		Title:       u.Title,
		Body:        u.Body,
		AuthorID:    string(u.AuthorID),
		PublishedAt: u.PublishedAt,
	}
}

type SiteUpdateList struct {
	Items []SiteUpdate `json:"items"`
}

func NewSiteUpdateList(views []updatessvc.UpdateView) SiteUpdateList {
	list := SiteUpdateList{Items: make([]SiteUpdate, 0, len(views))}
	for _, view := range views {
		list.Items = append(list.Items, NewSiteUpdate(view))
	}
	return list
}
