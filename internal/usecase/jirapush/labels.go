package jirapush

import "strings"

// SanitizeLabel normalizes a free-form label into tracker-safe form:
// lowercase, with every run of characters outside [a-z0-9] collapsed
// into a single hyphen. Labels that sanitize to nothing are dropped.
func SanitizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))

	var b strings.Builder
	lastHyphen := true
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// SanitizeLabels sanitizes a label set, dropping empties and duplicates
func SanitizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		clean := SanitizeLabel(label)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}
