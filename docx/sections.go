package docx

import "strings"

// Section is a heading plus the text that follows it, up to the next heading.
// The leading section of a document may have no heading.
type Section struct {
	Heading string
	Content string
}

// ParseSections splits generated petition text on markdown-style heading
// markers ("## " and "# "). Lines that start with neither marker accumulate
// into the current section's content.
func ParseSections(text string) []Section {
	var sections []Section
	var heading string
	var content []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(content, "\n"))
		if body != "" || heading != "" {
			sections = append(sections, Section{
				Heading: heading,
				Content: body,
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "## "):
			flush()
			heading = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			content = nil
		case strings.HasPrefix(line, "# "):
			flush()
			heading = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			content = nil
		default:
			content = append(content, line)
		}
	}
	flush()

	return sections
}
