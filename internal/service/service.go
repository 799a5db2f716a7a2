// Package service holds the use cases of the admin tool on top of the
// repositories: browsing and deleting table records and listing extract
// requests with their requesters.
package service
