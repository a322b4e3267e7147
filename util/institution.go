// Package util provides utility functions for the application.
package util

import "strings"

// NormalizeInstitutionName ensures institution names are always lowercase and trimmed
// Use this function whenever comparing institution names from external sources
func NormalizeInstitutionName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
