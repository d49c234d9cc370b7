package redis

// keys builds every Redis key under one prefix.
type keys struct {
	prefix string
}

// Collection returns the hash holding a collection's records.
func (k keys) Collection(name string) string {
	return k.prefix + ":collection:" + name
}

// Collections returns the set of collection names created by Migrate.
func (k keys) Collections() string {
	return k.prefix + ":collections"
}

// SchemaVersion returns the key holding the schema version.
func (k keys) SchemaVersion() string {
	return k.prefix + ":schema_version"
}
