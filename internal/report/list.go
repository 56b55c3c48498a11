package report

import "strings"

// ── Newline List Convention ──────────────────────────────────────
// Ordered lists of text items are stored as newline-joined text. This is the
// document's only list representation; both halves of the package must agree
// on it exactly.

// ParseList splits a newline-delimited field into its items. Lines are
// trimmed and blank lines dropped; an empty field yields an empty list,
// never an error. Any "- " bullet prefix is preserved — stripping it is a
// render-time concern (see StripBullet).
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}

// JoinList is the storage-side inverse of ParseList.
func JoinList(items []string) string {
	return strings.Join(items, "\n")
}

// StripBullet removes a single leading "- " marker from a list item.
// Applied only when presenting an item, never when storing one.
func StripBullet(item string) string {
	return strings.TrimPrefix(item, "- ")
}
