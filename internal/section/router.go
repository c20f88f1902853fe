package section

import "strings"

// FallbackLimit caps the all-sections fallback returned when no section
// title matches any routing keyword. The cut is a blunt character
// truncation and may land mid-sentence; that mirrors the upstream
// behavior and is deliberately not made smarter here.
const FallbackLimit = 8000

// Route selects every section whose normalized title contains any of
// the keywords (case-insensitive substring match) and concatenates the
// matches, each re-labeled under its own heading. With no match it
// falls back to a bounded prefix of all sections, so the result is
// never empty for a non-empty map.
func Route(sections *Map, keywords []string) string {
	var matched []string
	for _, title := range sections.titles {
		if matchesAny(title, keywords) {
			matched = append(matched, renderSection(title, sections.bodies[title]))
		}
	}
	if len(matched) > 0 {
		return strings.Join(matched, "\n\n")
	}

	all := make([]string, 0, len(sections.titles))
	for _, title := range sections.titles {
		all = append(all, renderSection(title, sections.bodies[title]))
	}
	joined := strings.Join(all, "\n\n")
	if len(joined) > FallbackLimit {
		joined = joined[:FallbackLimit]
	}
	return joined
}

func renderSection(title, body string) string {
	return "# " + title + "\n\n" + body
}

func matchesAny(title string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
