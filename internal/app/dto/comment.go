package dto

import (
	"time"

	moderationsvc "memberhub/internal/app/services/moderation"
	domaincomment "memberhub/internal/domain/comment"
)

type Comment struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	Body            string    `json:"body"`
	Context         string    `json:"context"`
	ContextRefID    string    `json:"context_ref_id,omitempty"`
	Status          string    `json:"status"`
	ModeratorNote   string    `json:"moderator_note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewComment(view moderationsvc.CommentView) Comment {
	return Comment{
		ID:              string(view.ID),
		AuthorID:        string(view.AuthorID),
		AuthorName:      view.AuthorName,
		AuthorAvatarURL: view.AuthorAvatarURL,
		Body:            view.Body,
		Context:         string(view.Context),
		ContextRefID:    view.ContextRefID,
		Status:          string(view.Status),
		ModeratorNote:   view.ModeratorNote,
		CreatedAt:       view.CreatedAt,
		UpdatedAt:       view.UpdatedAt,
	}
}

func NewCommentFromDomain(c *domaincomment.Comment) Comment {
	return Comment{
		ID:            string(c.ID),
		AuthorID:      string(c.AuthorID),
		Body:          c.Body,
		Context:       string(c.Context),
		ContextRefID:  c.ContextRefID,
		Status:        string(c.Status),
		ModeratorNote: c.ModeratorNote,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type CommentList struct {
	Items []Comment `json:"items"`
	Total int       `json:"total"`
}

func NewCommentList(views []moderationsvc.CommentView, total int) CommentList {
	list := CommentList{Items: make([]Comment, 0, len(views)), Total: total}
	for _, view := range views {
		list.Items = append(list.Items, NewComment(view))
	}
	return list
}
