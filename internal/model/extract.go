package model

import (
	"time"

	"github.com/deppfellow/cla-admin/internal/database"
)

// Extract statuses.
const (
	ExtractStatusPending  = "pending"
	ExtractStatusApproved = "approved"
	ExtractStatusRejected = "rejected"
)

// Extract is a licensed copy of part of a published work, requested by a
// user for a course.
type Extract struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"userid" json:"userId"`
	Course      string    `db:"course" json:"course"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	ISBN        *string   `db:"isbn" json:"isbn,omitempty"`
	Pages       string    `db:"pages" json:"pages"`
	Status      string    `db:"status" json:"status"`
	TimeCreated time.Time `db:"timecreated" json:"timeCreated"`
}

func (Extract) TableName() string { return "extract" }

func (e *Extract) SetData(rec database.Record, strict bool) error {
	return database.SetFields(e, rec, strict)
}

// Approved reports whether the extract may be distributed.
func (e *Extract) Approved() bool {
	return e.Status == ExtractStatusApproved
}
