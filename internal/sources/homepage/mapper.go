package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/bookmarkonce/internal/domain"
)

// ErrNoBookmarks is returned when a file yields no importable link.
var ErrNoBookmarks = errors.New("no valid bookmarks found in config")

// MapLinks flattens a bookmarks config into standalone links. Categories
// keep their file order; names inside one YAML mapping are sorted so the
// result is stable. Entries without a usable http(s) href are skipped and a
// URL seen twice is only kept once.
func MapLinks(config BookmarksConfig) ([]domain.Link, error) {
	links := make([]domain.Link, 0)
	seen := make(map[string]struct{})

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					href := strings.TrimSpace(entry.Href)
					if !isWebURL(href) {
						continue
					}

					id := LinkID(href)
					if _, dup := seen[id]; dup {
						continue
					}
					seen[id] = struct{}{}

					title := strings.TrimSpace(bookmarkName)
					if title == "" {
						title = entry.Abbr
					}

					links = append(links, domain.Link{
						ID:    id,
						Title: title,
						URL:   href,
					})
				}
			}
		}
	}

	if len(links) == 0 {
		return nil, ErrNoBookmarks
	}

	return links, nil
}

// LinkID creates a stable ID from a URL using SHA-256 hash, so re-importing
// the same file produces the same keys.
func LinkID(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	// first 16 hex chars are plenty for a personal bookmark set
	return hex.EncodeToString(hash[:])[:16]
}

func isWebURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
