package index

// Cache defines the metadata cache operations used by the vault host.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Cache interface {
	Upsert(e Entry) error
	Delete(path string) error
	Get(path string) (*Entry, error)
	All() ([]Entry, error)
	AllChecksums() (map[string]string, error)
}

// Verify *DB satisfies Cache at compile time.
var _ Cache = (*DB)(nil)
