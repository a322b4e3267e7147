// Package util provides utility functions for the backend.
package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TreeRef is the slice of an existing tree record the allocator needs.
type TreeRef struct {
	ID          string `json:"tree_id"`
	Institution string `json:"institution"`
}

// MalformedIdentifierError reports an existing tree identifier whose numeric
// suffix cannot be parsed. Allocation stops on it: skipping a corrupt
// identifier could re-issue one that is already taken.
type MalformedIdentifierError struct {
	ID string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("tree identifier %q has no parseable numeric suffix", e.ID)
}

var trailingDigits = regexp.MustCompile(`\d+$`)

// InstitutionPrefix derives the identifier prefix for an institution: the
// first three characters upper-cased, fewer when the name is shorter.
func InstitutionPrefix(institutionName string) string {
	r := []rune(institutionName)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// NextTreeID allocates the next sequential tree identifier for an
// institution. Existing trees are filtered to the same institution
// (case-insensitive) whose identifier starts with the institution's prefix;
// the result is the highest numeric suffix plus one, zero-padded to three
// digits (wider once the sequence passes 999). An institution with no
// matching trees starts at <prefix>001.
//
// NextTreeID is a pure function over the snapshot it is given. It performs
// no locking; callers must serialize allocate-and-persist so two concurrent
// calls cannot allocate from the same stale snapshot.
func NextTreeID(institutionName string, existing []TreeRef) (string, error) {
	prefix := InstitutionPrefix(institutionName)
	norm := NormalizeInstitutionName(institutionName)

	maxSeq := 0
	found := false
	for _, t := range existing {
		if NormalizeInstitutionName(t.Institution) != norm {
			continue
		}
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}

		digits := trailingDigits.FindString(t.ID)
		if digits == "" {
			return "", &MalformedIdentifierError{ID: t.ID}
		}
		seq, err := strconv.Atoi(digits)
		if err != nil {
			return "", &MalformedIdentifierError{ID: t.ID}
		}

		if seq > maxSeq {
			maxSeq = seq
		}
		found = true
	}

	if !found {
		return prefix + "001", nil
	}
	return fmt.Sprintf("%s%03d", prefix, maxSeq+1), nil
}
