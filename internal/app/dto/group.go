package dto

import (
	"time"

	domaingroup "memberhub/internal/domain/group"
)

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	MemberIDs   []string  `json:"member_ids"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewGroup(g *domaingroup.Group) Group {
	memberIDs := make([]string, 0, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		memberIDs = append(memberIDs, string(id))
	}
	return Group{
		ID:          string(g.ID),
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     string(g.OwnerID),
		MemberIDs:   memberIDs,
		MemberCount: len(memberIDs),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

type GroupList struct {
	Items []Group `json:"items"`
}

func NewGroupList(groups []*domaingroup.Group) GroupList {
	list := GroupList{Items: make([]Group, 0, len(groups))}
	for _, g := range groups {
		list.Items = append(list.Items, NewGroup(g))
	}
	return list
}
