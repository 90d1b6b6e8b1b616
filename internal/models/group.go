package models

// Member is one person in a group.
type Member struct {
	// ID identifies the member within the group. It is a user ID for
	// registered users or any stable string for guests.
	ID string

	// Name is the display name.
	Name string
}

// Group represents a reusable member list. Groups own expenses and settlements.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Currency is the ISO 4217 code every expense in the group uses.
	Currency string

	// Members is the ordered member list. Order matters: split remainders
	// are handed out in this order.
	Members []Member

	// CreatedBy is the user ID that created the group, empty for anonymous groups.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether id belongs to the group.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}
