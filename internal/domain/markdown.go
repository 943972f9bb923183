package domain

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const maxDescriptionLength = 200

// Frontmatter holds the optional YAML header of a Markdown document
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// SplitFrontmatter separates a leading "---" YAML block from the body.
// Content without a valid block is returned unchanged.
func SplitFrontmatter(content string) (Frontmatter, string) {
	var fm Frontmatter

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return fm, content
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, content
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return Frontmatter{}, content
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return fm, body
}

// HeadingTitle returns the text of a "# " heading on the first line.
// A heading below a blank first line does not count.
func HeadingTitle(body string) (string, bool) {
	first, _, _ := strings.Cut(body, "\n")
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, "# ") {
		return "", false
	}
	title := strings.TrimSpace(first[2:])
	return title, title != ""
}

// MarkdownTitle picks a document title: first-line heading, then front
// matter title, then fallback
func MarkdownTitle(content, fallback string) string {
	fm, body := SplitFrontmatter(content)
	if title, ok := HeadingTitle(body); ok {
		return title
	}
	if fm.Title != "" {
		return fm.Title
	}
	return fallback
}

// MarkdownDescription returns the first line of prose after the title,
// truncated to 200 characters
func MarkdownDescription(content string) string {
	fm, body := SplitFrontmatter(content)
	if fm.Description != "" {
		return truncate(fm.Description, maxDescriptionLength)
	}

	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < 2 {
		return ""
	}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		return truncate(line, maxDescriptionLength)
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
