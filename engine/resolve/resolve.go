// Package resolve maps item names typed by the player to the canonical
// names held in an inventory or a room.
package resolve

import (
	"fmt"
	"strings"
)

// AmbiguityError indicates multiple items matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no item matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %q here", e.Name)
}

// Item resolves name against candidates (an inventory or a room's items).
// An exact match wins, then a case-insensitive match, then a match on any
// single word of a multi-word name ("potion" → "healing potion").
func Item(candidates []string, name string) (string, error) {
	query := normalize(name)
	if query == "" {
		return "", &NotFoundError{Name: name}
	}

	for _, c := range candidates {
		if c == name {
			return c, nil
		}
	}
	for _, c := range candidates {
		if normalize(c) == query {
			return c, nil
		}
	}

	var matches []string
	for _, c := range candidates {
		if containsStr(matches, c) {
			continue
		}
		for _, word := range strings.Fields(normalize(c)) {
			if word == query {
				matches = append(matches, c)
				break
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsStr(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
