// Package roster resolves the canonical participant list for a registration.
//
// Two sources compete: the roster columns of the registrations spreadsheet
// and an optional manual override stored on the registration's status record.
// Resolve implements the override-first policy: a non-empty override always
// wins. This is a deliberate, documented decision; earlier revisions of the
// system flipped the priority and consumers must never re-decide it locally.
package roster

import (
	"errors"
	"strings"

	"github.com/okian/mela/internal/domain/model"
)

// Roster size bounds enforced on manual overrides.
const (
	MinSize = 1
	MaxSize = 20
)

// ErrInvalidRosterSize indicates an override outside [MinSize, MaxSize]
// after normalization.
var ErrInvalidRosterSize = errors.New("invalid roster size")

// Normalize trims every name, drops blanks, and deduplicates
// case-insensitively while preserving first-seen order and casing.
func Normalize(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ExtractSource builds the roster from the registration's spreadsheet
// columns: leader first, then mapped member slots, then loosely named
// participant columns.
func ExtractSource(reg model.Registration) []string {
	names := make([]string, 0, 1+len(reg.Members)+len(reg.Extra))
	if reg.Leader != "" {
		names = append(names, reg.Leader)
	}
	names = append(names, reg.Members...)
	names = append(names, reg.Extra...)
	return Normalize(names)
}

// Resolve returns the authoritative roster for a registration.
// A manual override containing at least one non-blank name supersedes the
// source roster; otherwise the source roster is used.
func Resolve(reg model.Registration, override []string) []string {
	if cleaned := Normalize(override); len(cleaned) > 0 {
		return cleaned
	}
	return ExtractSource(reg)
}

// ValidateOverride normalizes a proposed override and enforces the size
// bounds. The returned slice is what callers must persist.
func ValidateOverride(names []string) ([]string, error) {
	cleaned := Normalize(names)
	if len(cleaned) < MinSize || len(cleaned) > MaxSize {
		return nil, ErrInvalidRosterSize
	}
	return cleaned, nil
}
