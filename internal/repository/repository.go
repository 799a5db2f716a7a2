// Package repository is the only layer that talks to the DAL.
//
// Repositories take symbolic table names and database.Params and hand back
// records or typed models; they never build SQL with values in it.
package repository
