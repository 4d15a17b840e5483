package store

import (
	"path/filepath"
	"testing"
)

// MustTempStore returns a Store backed by a file in a temporary directory,
// registering cleanup with t.
func MustTempStore(t *testing.T) DBStore {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("create temp store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close temp store: %v", err)
		}
	})
	return st
}
