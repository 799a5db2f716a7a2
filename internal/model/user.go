package model

import (
	"strings"

	"github.com/deppfellow/cla-admin/internal/database"
)

type User struct {
	ID        int64   `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	Email     *string `db:"email" json:"email,omitempty"`
	FirstName string  `db:"firstname" json:"firstName"`
	LastName  string  `db:"lastname" json:"lastName"`
	Role      string  `db:"role" json:"role"`
	Active    bool    `db:"active" json:"active"`
}

func (User) TableName() string { return "users" }

func (u *User) SetData(rec database.Record, strict bool) error {
	return database.SetFields(u, rec, strict)
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
