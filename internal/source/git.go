package source

import (
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/ast"
)

// GitLoader reads declaration documents as they were at a given revision,
// without touching the working tree.
type GitLoader struct {
	repo    *git.Repository
	include []string
	// cleanup removes the temporary clone, if any.
	cleanup func() error
}

// OpenGit opens an existing repository at dir.
func OpenGit(dir string, include []string) (*GitLoader, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", dir, err)
	}
	return &GitLoader{repo: repo, include: include}, nil
}

// CloneGit clones url into a temporary directory. Close removes it.
func CloneGit(url string, include []string) (*GitLoader, error) {
	tempDir, err := os.MkdirTemp("", "declbind-git-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	repo, err := git.PlainClone(tempDir, true, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to clone repository %s: %w", url, err)
	}
	return &GitLoader{
		repo:    repo,
		include: include,
		cleanup: func() error { return os.RemoveAll(tempDir) },
	}, nil
}

// Close releases the temporary clone created by CloneGit.
func (g *GitLoader) Close() error {
	if g.cleanup == nil {
		return nil
	}
	return g.cleanup()
}

// Resolve turns a tag, branch or commit hash into a commit hash. An empty
// revision means HEAD.
func (g *GitLoader) Resolve(rev string) (plumbing.Hash, error) {
	if rev == "" {
		head, err := g.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		return head.Hash(), nil
	}

	candidates := []plumbing.Revision{
		plumbing.Revision(plumbing.NewTagReferenceName(rev)),
		plumbing.Revision(plumbing.NewBranchReferenceName(rev)),
		plumbing.Revision(plumbing.NewRemoteReferenceName("origin", rev)),
		plumbing.Revision(rev),
	}
	for _, c := range candidates {
		if hash, err := g.repo.ResolveRevision(c); err == nil {
			return *hash, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("revision not found: %s", rev)
}

// Load decodes the documents under dirs (repository-relative, "" or "." for
// the whole tree) at rev. Files are read in lexical path order.
func (g *GitLoader) Load(rev string, dirs []string) (*ast.Program, error) {
	hash, err := g.Resolve(rev)
	if err != nil {
		return nil, err
	}
	commit, err := g.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	include := g.include
	if len(include) == 0 {
		include = DefaultInclude
	}

	var files []*object.File
	err = tree.Files().ForEach(func(f *object.File) error {
		if !underAny(f.Name, dirs) {
			return nil
		}
		ok, err := Matches(f.Name, include)
		if ok {
			files = append(files, f)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, func(a, b *object.File) int { return strings.Compare(a.Name, b.Name) })

	program := &ast.Program{}
	var errs []error
	for _, f := range files {
		p, err := decodeFile(f, rev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		program.Decls = append(program.Decls, p.Decls...)
	}
	switch len(errs) {
	case 0:
		return program, nil
	case 1:
		return nil, errs[0]
	default:
		return nil, &binderr.MultiError{Errors: errs}
	}
}

func decodeFile(f *object.File, rev string) (*ast.Program, error) {
	name := f.Name
	if rev != "" {
		name = rev + ":" + f.Name
	}
	r, err := f.Reader()
	if err != nil {
		return nil, binderr.NewLoadError(name, 0, err.Error())
	}
	defer r.Close()
	return Decode(r, name)
}

func underAny(name string, dirs []string) bool {
	if len(dirs) == 0 {
		return true
	}
	for _, dir := range dirs {
		dir = strings.Trim(path.Clean(dir), "/")
		if dir == "." || dir == "" || name == dir || strings.HasPrefix(name, dir+"/") {
			return true
		}
	}
	return false
}
