package storage

const (
	// DatabaseName names the persistent database.
	DatabaseName = "bookmark-once-db"

	// SchemaVersion is bumped whenever the collection set changes.
	// Upgrades are additive: collections are created, never dropped.
	SchemaVersion = 3

	// CollectionLinks holds standalone links keyed by id.
	CollectionLinks = "links"
	// CollectionSessions holds sessions keyed by id.
	CollectionSessions = "sessions"
)

// Collections returns every collection the current schema requires.
func Collections() []string {
	return []string{CollectionLinks, CollectionSessions}
}
