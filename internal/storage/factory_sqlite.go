//go:build sqlite

package storage

const sqliteAvailable = true

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}
