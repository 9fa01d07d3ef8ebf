package models

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           int    `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
	DisplayName  string `db:"display_name" json:"display_name"`
	Bio          string `db:"bio" json:"bio"`
	Avatar       string `db:"avatar" json:"avatar"`
}

// UserSummary is the public projection returned by search and friend lists.
type UserSummary struct {
	ID          int    `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	DisplayName string `db:"display_name" json:"display_name"`
	Avatar      string `db:"avatar" json:"avatar"`
}
