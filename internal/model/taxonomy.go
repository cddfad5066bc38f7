package model

import "time"

type Tag struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Blogs     int    `json:"blogs,omitempty"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
}

func (t Tag) OptionID() string   { return t.ID }
func (t Tag) OptionName() string { return t.Name }

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

type Author struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"type,omitempty"`
	Status    string    `json:"status,omitempty"`
	Blogs     int       `json:"blogs,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (a Author) OptionID() string { return a.ID }

// OptionName falls back to the username for accounts created without a display name.
func (a Author) OptionName() string {
	if a.Name == "" {
		return a.Username
	}
	return a.Name
}

// NewAuthor is the sign-up body used to create an author account.
type NewAuthor struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"type"`
}
