package store

import (
	"testing"

	"github.com/roach88/sift/internal/testutil"
)

// createTestStore creates a new in-memory store seeded with the fixture
// users and tags.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	testutil.SeedUsers(t, s.DB())
	return s
}
