package util

import (
	"path/filepath"
	"testing"
)

// TempDataFile returns the path of a page file that does not exist yet,
// inside a directory removed when the test ends.
func TempDataFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pages.dat")
}
