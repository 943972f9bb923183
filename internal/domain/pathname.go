package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultOrder places unprefixed segments after every numbered one
	DefaultOrder = 999

	// RootSection is the section of documents stored at the top of the tree
	RootSection = "Documentation"
)

var (
	prefixRegex = regexp.MustCompile(`^(\d+)_(.+)$`)

	// suppressedSections hide whole top-level folders from the catalog
	suppressedSections = map[string]bool{
		"meekleboss": true,
		"misc":       true,
		"other":      true,
	}
)

// SplitPrefix separates the NN_ ordering prefix from a segment name.
// ok is false when the segment carries no numeric prefix. Prefixes too
// large for an int order as math.MaxInt.
func SplitPrefix(segment string) (order int, name string, ok bool) {
	matches := prefixRegex.FindStringSubmatch(segment)
	if matches == nil {
		return DefaultOrder, segment, false
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		// A run of digits only fails on overflow
		n = math.MaxInt
	}
	return n, matches[2], true
}

// CleanTitle turns a path segment into a display title
// e.g., "7_getting_started" -> "Getting Started"
func CleanTitle(segment string) string {
	_, name, _ := SplitPrefix(segment)
	// Casers keep state between calls and are not shared
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}

// OrderOf returns the numeric prefix of a segment, or DefaultOrder
func OrderOf(segment string) int {
	order, _, _ := SplitPrefix(segment)
	return order
}

// SectionOf derives the section name from the first segment of a path.
// The second result is false when the section is suppressed and the
// document must be left out of the catalog.
func SectionOf(path string) (string, bool) {
	first := firstSegment(path)
	if first == "" {
		return RootSection, true
	}
	_, name, _ := SplitPrefix(first)
	if suppressedSections[strings.ToLower(name)] {
		return "", false
	}
	return CleanTitle(first), true
}

// SectionOrderOf returns the sort key of the section a path belongs to
func SectionOrderOf(path string) int {
	first := firstSegment(path)
	if first == "" {
		return DefaultOrder
	}
	return OrderOf(first)
}

// Breadcrumbs returns one crumb per path segment, the last one marked current
func Breadcrumbs(path string) []Breadcrumb {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	parts := strings.Split(path, "/")
	crumbs := make([]Breadcrumb, 0, len(parts))
	for i, part := range parts {
		crumbs = append(crumbs, Breadcrumb{
			Name:      CleanTitle(part),
			Path:      strings.Join(parts[:i+1], "/"),
			IsCurrent: i == len(parts)-1,
		})
	}
	return crumbs
}

// ParentPath strips the last segment from a document path
// e.g., "guides/1_intro" -> "guides", "intro" -> ""
func ParentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// BaseName returns the last segment of a document path
func BaseName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// JoinPath joins a parent path and a segment with "/"
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return path
}
