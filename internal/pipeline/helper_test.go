package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
	"github.com/stretchr/testify/require"

	"martianoff/declbind/internal/ast"
	"martianoff/declbind/internal/source"
)

// fixture loads a file or directory under internal/pipeline/testdata.
func fixture(t *testing.T, name string) *ast.Program {
	t.Helper()
	p, err := source.LoadPaths([]string{fixturePath(t, name)}, nil)
	require.NoError(t, err)
	return p
}

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	rel := filepath.Join("internal", "pipeline", "testdata", name)
	if p, err := bazel.Runfile(rel); err == nil {
		return p
	}

	dir, err := os.Getwd()
	require.NoError(t, err)
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
