package models

// Group is a named chat group. The owner is always also a member.
type Group struct {
	ID      int    `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	OwnerID int    `db:"owner_id" json:"owner_id"`
}

// GroupMembership links a user to a group; presence implies membership.
type GroupMembership struct {
	GroupID int `db:"group_id" json:"group_id"`
	UserID  int `db:"user_id" json:"user_id"`
}
