package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxSections    = 12
	minSectionBody = 80
)

// sectionsFromHTML splits readable article HTML into sections at h1-h3
// boundaries. Returns nil when the document has no usable headings.
func sectionsFromHTML(html string) []Section {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var sections []Section
	var current *Section

	doc.Find("h1, h2, h3, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3":
			if current != nil && len(current.Body) >= minSectionBody {
				sections = append(sections, *current)
			}
			current = &Section{Heading: text}
		default:
			if current == nil {
				return
			}
			if current.Body != "" {
				current.Body += "\n\n"
			}
			current.Body += text
		}
	})
	if current != nil && len(current.Body) >= minSectionBody {
		sections = append(sections, *current)
	}

	if len(sections) < 2 {
		return nil
	}
	if len(sections) > maxSections {
		sections = sections[:maxSections]
	}
	return sections
}

// markdownHeading matches "# Heading" through "### Heading".
var markdownHeading = regexp.MustCompile(`^#{1,3}\s+(.+)$`)

// sectionsFromText splits raw text into sections at markdown-style headings.
// Returns nil when no headings are present; the pipeline treats a
// sectionless document as a single body of text.
func sectionsFromText(text string) []Section {
	var sections []Section
	var current *Section

	for _, line := range strings.Split(text, "\n") {
		if m := markdownHeading.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if current != nil && len(strings.TrimSpace(current.Body)) >= minSectionBody {
				current.Body = strings.TrimSpace(current.Body)
				sections = append(sections, *current)
			}
			current = &Section{Heading: strings.TrimSpace(m[1])}
			continue
		}
		if current != nil {
			current.Body += line + "\n"
		}
	}
	if current != nil && len(strings.TrimSpace(current.Body)) >= minSectionBody {
		current.Body = strings.TrimSpace(current.Body)
		sections = append(sections, *current)
	}

	if len(sections) < 2 {
		return nil
	}
	if len(sections) > maxSections {
		sections = sections[:maxSections]
	}
	return sections
}
