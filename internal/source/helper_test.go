package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// testdata returns the path of a fixture under internal/source/testdata.
// Under Bazel it comes from runfiles; otherwise from the module root.
func testdata(t *testing.T, name string) string {
	t.Helper()
	rel := filepath.Join("internal", "source", "testdata", name)
	if p, err := bazel.Runfile(rel); err == nil {
		return p
	}

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, rel)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	t.Fatalf("fixture %s not found", name)
	return ""
}
