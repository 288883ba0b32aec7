package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateProjectName validates a user supplied project name.
//
// The rules are conservative because names end up in file names of the
// file store and in generated code:
//   - No empty or whitespace-only names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidProject, "project name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidProject, "project name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProject, "project name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidProject, "project name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// featureKeyRegex matches lowerCamelCase identifiers such as "mailService".
var featureKeyRegex = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)

// ValidateFeatureKey validates the spelling of a feature key declared in the
// static tables. It does not check that the key is part of any catalog.
func ValidateFeatureKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidFeature, "feature key cannot be empty")
	}
	if len(key) > 64 {
		return New(ErrCodeInvalidFeature, "feature key too long (max 64 characters)")
	}
	if !featureKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidFeature, "invalid feature key: %q (want lowerCamelCase)", key)
	}
	return nil
}

// targetKeyRegex matches language and framework identifiers ("spring-boot").
var targetKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateTargetKey validates a language or framework identifier.
func ValidateTargetKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidTarget, "target key cannot be empty")
	}
	if !targetKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidTarget, "invalid target key: %q (want lower-kebab-case)", key)
	}
	return nil
}
