package application

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"mdoc/internal/domain"
)

var revisionRegex = regexp.MustCompile(`^[A-Za-z0-9._/-]{1,100}$`)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", fieldName),
		}
	}
	return nil
}

// ValidateRevision checks that a revision looks like a commit hash or ref
func ValidateRevision(revision string) error {
	if !revisionRegex.MatchString(revision) || strings.Contains(revision, "..") {
		return &ValidationError{
			Field:   "revision",
			Message: fmt.Sprintf("invalid revision: %s", revision),
		}
	}
	return nil
}

// SanitizePath turns a user supplied document path into a catalog path.
// It unescapes URL encoding, drops leading and trailing slashes and a
// source extension, and rejects traversal or hidden segments.
func SanitizePath(raw string) (string, error) {
	path, err := url.PathUnescape(raw)
	if err != nil {
		return "", &PathError{Path: raw, Reason: "malformed escape"}
	}

	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "", &PathError{Path: raw, Reason: "empty"}
	}
	if strings.ContainsRune(path, 0) {
		return "", &PathError{Path: raw, Reason: "contains NUL"}
	}

	for _, ext := range domain.Extensions {
		path = strings.TrimSuffix(path, ext)
	}

	for _, segment := range strings.Split(path, "/") {
		switch {
		case segment == "":
			return "", &PathError{Path: raw, Reason: "empty segment"}
		case segment == "." || segment == "..":
			return "", &PathError{Path: raw, Reason: "relative segment"}
		case strings.HasPrefix(segment, "."):
			return "", &PathError{Path: raw, Reason: "hidden segment"}
		}
	}

	return path, nil
}
