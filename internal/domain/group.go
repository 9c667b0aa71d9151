package domain

import (
	"context"
	"time"
)

// Group is a Secret Santa group. IsDrawn and DrawnAt are owned by the draw coordinator.
// swagger:model Group
type Group struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"owner_id"`
	IsDrawn   bool       `json:"is_drawn"`
	DrawnAt   *time.Time `json:"drawn_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DrawState returns the group's draw state.
func (g *Group) DrawState() GroupDrawState {
	return GroupDrawState{GroupID: g.ID, IsDrawn: g.IsDrawn, DrawnAt: g.DrawnAt}
}

// GroupDrawState is the single source of truth for "has this group been drawn".
// swagger:model GroupDrawState
type GroupDrawState struct {
	GroupID string     `json:"group_id"`
	IsDrawn bool       `json:"is_drawn"`
	DrawnAt *time.Time `json:"drawn_at"`
}

// GroupRepository defines read access to groups. Draw state is only written through DrawStore.
type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*Group, error)
}
