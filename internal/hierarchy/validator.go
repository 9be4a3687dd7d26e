// Package hierarchy checks a resource's ancestor chain before it is read or mutated.
//
// Checks run in a fixed order: existence from root to leaf, then the service kind, then
// ownership. A caller that does not own a missing resource therefore sees "not found".
package hierarchy

import (
	"github.com/MikeMC777/taller-ecom/internal/apperr"
)

// Link is one fetched level of a chain.
type Link struct {
	Label string
	ID    int64
	Found bool
}

// Present builds a Link from the row fetched for id; a nil row means the level is missing.
func Present[T any](label string, id int64, row *T) Link {
	return Link{Label: label, ID: id, Found: row != nil}
}

// ValidateChain reports the shallowest missing link.
func ValidateChain(links ...Link) error {
	for _, l := range links {
		if !l.Found {
			return apperr.NotFound(l.Label, l.ID)
		}
	}
	return nil
}

// ValidateKind fails when a discriminant differs from the one the caller addresses.
func ValidateKind[K ~string](expected, actual K) error {
	if expected != actual {
		return apperr.TypeMismatch(string(expected), string(actual))
	}
	return nil
}

// ValidateOwnership is applied on mutations only.
func ValidateOwnership(ownerID, principalID int64) error {
	if ownerID != principalID {
		return apperr.Forbidden()
	}
	return nil
}
