package source_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/declbind/internal/source"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

func (r *testRepo) commit(msg string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.AddWithOptions(&git.AddOptions{All: true}))
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(r.t, err)
	return hash
}

func (r *testRepo) tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, hash, nil)
	require.NoError(r.t, err)
}

func TestGitLoaderReadsRevision(t *testing.T) {
	r := newTestRepo(t)
	r.write("decls/a.yaml", "declarations:\n  - {kind: variable, name: first}\n")
	r.write("README.md", "not loaded\n")
	first := r.commit("first")
	r.tag("v1.0.0", first)

	r.write("decls/b.yaml", "declarations:\n  - {kind: variable, name: second}\n")
	r.write("other/c.yaml", "declarations:\n  - {kind: variable, name: third}\n")
	second := r.commit("second")

	loader, err := source.OpenGit(r.dir, nil)
	require.NoError(t, err)
	defer loader.Close()

	tests := []struct {
		name string
		rev  string
		dirs []string
		want []string
	}{
		{"tag", "v1.0.0", nil, []string{"first"}},
		{"hash", first.String(), []string{"decls"}, []string{"first"}},
		{"head", "", nil, []string{"first", "second", "third"}},
		{"head hash", second.String(), []string{"decls"}, []string{"first", "second"}},
		{"subdirectory", "", []string{"other/"}, []string{"third"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := loader.Load(tt.rev, tt.dirs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, declNames(p))
		})
	}
}

func TestGitLoaderBranch(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.yaml", "declarations:\n  - {kind: variable, name: main}\n")
	base := r.commit("base")

	wt, err := r.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Hash:   base,
		Create: true,
	}))
	r.write("a.yaml", "declarations:\n  - {kind: variable, name: feature}\n")
	r.commit("feature")

	loader, err := source.OpenGit(r.dir, nil)
	require.NoError(t, err)

	p, err := loader.Load("feature", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"feature"}, declNames(p))

	p, err = loader.Load(base.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, declNames(p))
}

func TestGitLoaderErrors(t *testing.T) {
	r := newTestRepo(t)
	r.write("bad.yaml", "declarations:\n  - {kind: import, name: X}\n")
	r.commit("bad")

	loader, err := source.OpenGit(r.dir, nil)
	require.NoError(t, err)

	_, err = loader.Load("no-such-rev", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revision not found: no-such-rev")

	_, err = loader.Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")

	_, err = source.OpenGit(t.TempDir(), nil)
	require.Error(t, err)
}
