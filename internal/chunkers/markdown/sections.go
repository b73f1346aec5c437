package markdown

import (
	"strings"
)

// maxLevel is the deepest heading that starts a new section.
const maxLevel = 4

// RootLocation labels content that appears before any heading.
const RootLocation = "ROOT"

// Section is a run of body text under one heading path.
type Section struct {
	// Headings holds the h1..h4 texts in effect; absent levels are "".
	Headings [maxLevel]string

	// Body is the section text with heading lines removed. Paragraphs are
	// separated by a blank line.
	Body string
}

// Location joins the present headings with " > ", or returns RootLocation.
func (s Section) Location() string {
	parts := make([]string, 0, maxLevel)
	for _, h := range s.Headings {
		if h != "" {
			parts = append(parts, h)
		}
	}
	if len(parts) == 0 {
		return RootLocation
	}
	return strings.Join(parts, " > ")
}

// SplitSections splits markdown on "#" through "####" headings.
//
// A heading marker must be followed by a space or end the line, so
// "#hashtag" and "#####" lines are body text. Lines inside fenced code
// blocks are never headings. A heading clears every heading at its own
// level or deeper. Consecutive paragraphs under the same heading path are
// merged into one section.
func SplitSections(text string) []Section {
	var (
		sections  []Section
		headings  [maxLevel]string
		current   [maxLevel]string
		paragraph []string
		fence     string
	)

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		body := strings.Join(paragraph, "\n")
		paragraph = paragraph[:0]
		if n := len(sections); n > 0 && sections[n-1].Headings == current {
			sections[n-1].Body += "\n\n" + body
			return
		}
		sections = append(sections, Section{Headings: current, Body: body})
	}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)

		if fence == "" {
			if strings.HasPrefix(stripped, "```") && strings.Count(stripped, "```") == 1 {
				fence = "```"
			} else if strings.HasPrefix(stripped, "~~~") {
				fence = "~~~"
			}
		} else if strings.HasPrefix(stripped, fence) {
			fence = ""
		}

		if fence != "" {
			paragraph = append(paragraph, stripped)
			current = headings
			continue
		}

		if level, title, ok := parseHeading(stripped); ok {
			headings[level-1] = title
			for i := level; i < maxLevel; i++ {
				headings[i] = ""
			}
			flush()
		} else if stripped != "" {
			paragraph = append(paragraph, stripped)
		} else {
			flush()
		}
		current = headings
	}
	flush()

	return sections
}

// parseHeading recognises "# Title" through "#### Title".
func parseHeading(line string) (level int, title string, ok bool) {
	for level = maxLevel; level >= 1; level-- {
		marker := strings.Repeat("#", level)
		if !strings.HasPrefix(line, marker) {
			continue
		}
		rest := line[len(marker):]
		if rest == "" || rest[0] == ' ' {
			return level, strings.TrimSpace(rest), true
		}
		return 0, "", false
	}
	return 0, "", false
}
