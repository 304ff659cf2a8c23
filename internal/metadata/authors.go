package metadata

import (
	gocache "github.com/patrickmn/go-cache"
)

// AuthorNames maps author ids to display names for the lifetime of one
// pipeline run. Create one per run and pass it to every lookup.
type AuthorNames struct {
	names *gocache.Cache
}

// NewAuthorNames creates an empty name map
func NewAuthorNames() *AuthorNames {
	return &AuthorNames{names: gocache.New(gocache.NoExpiration, 0)}
}

// Set records a name, replacing any earlier one
func (a *AuthorNames) Set(id, name string) {
	a.names.Set(id, name, gocache.NoExpiration)
}

// Name returns the recorded name for id
func (a *AuthorNames) Name(id string) (string, bool) {
	v, ok := a.names.Get(id)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Len returns the number of known authors
func (a *AuthorNames) Len() int {
	return a.names.ItemCount()
}
