// ABOUTME: Input validation for resource names and record IDs
// ABOUTME: Prevents URL injection when caller input becomes an upstream path

package services

import (
	"fmt"
	"regexp"
	"strings"
)

// resourcePattern matches resource names, including nested ones like
// "privates/users". Each segment starts with a letter.
var resourcePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*(/[a-z][a-z0-9_-]*)*$`)

// recordIDPattern matches record identifiers: UUIDs, numeric IDs, and
// slug-style keys.
var recordIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// ValidateResource validates that a resource name has a safe format.
// This prevents URL path traversal via crafted resource names.
func ValidateResource(resource string) error {
	if resource == "" {
		return fmt.Errorf("resource name cannot be empty")
	}
	if !resourcePattern.MatchString(resource) {
		return fmt.Errorf("invalid resource name format: %s", sanitizeForLog(resource))
	}
	return nil
}

// ValidateRecordID validates that a record ID has a safe format.
// This prevents URL path traversal via crafted identifiers.
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	if !recordIDPattern.MatchString(id) {
		return fmt.Errorf("invalid record id format: %s", sanitizeForLog(id))
	}
	return nil
}
