// Package model holds the typed rows of the CLA tables.
//
// Every model reports its symbolic table name and hydrates itself from a
// database.Record through database.SetFields, so the DAL can build them
// with database.GetModels / database.GetModel.
package model

import "github.com/deppfellow/cla-admin/internal/database"

// Compile-time checks.
var (
	_ database.Model = (*Extract)(nil)
	_ database.Model = (*User)(nil)
)
