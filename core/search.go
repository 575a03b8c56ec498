package core

import (
	"slices"
	"strings"
)

// Matches reports whether the document satisfies every constraint of the request.
// A document without an author never matches an author filter.
func (r *SearchRequest) Matches(d *Document) bool {
	if d == nil {
		return false
	}
	if r == nil {
		return true
	}

	if len(r.TitlePrefixes) > 0 && !slices.ContainsFunc(r.TitlePrefixes, func(prefix string) bool {
		return strings.HasPrefix(d.Title, prefix)
	}) {
		return false
	}

	if len(r.ContainsContents) > 0 && !slices.ContainsFunc(r.ContainsContents, func(s string) bool {
		return strings.Contains(d.Content, s)
	}) {
		return false
	}

	if len(r.AuthorIDs) > 0 {
		if d.Author == nil || !slices.Contains(r.AuthorIDs, d.Author.ID) {
			return false
		}
	}

	if r.CreatedFrom != nil && d.Created.Before(*r.CreatedFrom) {
		return false
	}
	if r.CreatedTo != nil && d.Created.After(*r.CreatedTo) {
		return false
	}

	return true
}
