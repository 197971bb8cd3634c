package domain

import "strings"

// NormalizeItem turns a dictated transcript into a list item: surrounding
// whitespace and a trailing run of '.', '!' or '?' are removed, so "Milch."
// becomes "Milch".
func NormalizeItem(transcript string) string {
	item := strings.TrimSpace(transcript)
	item = strings.TrimRight(item, ".!?")
	return strings.TrimSpace(item)
}
