package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/ast"
)

// DefaultInclude are the patterns used when none are configured.
var DefaultInclude = []string{"*.yaml", "*.yml", "*.json"}

// LoadFile decodes a single declaration document.
func LoadFile(path string) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, binderr.NewLoadError(path, 0, err.Error())
	}
	defer f.Close()
	return Decode(f, path)
}

// LoadPaths loads files and directories into one program, in argument order.
// Directories are walked recursively; files whose base name matches one of
// include are loaded in lexical order. Failures are collected so every broken
// document is reported at once.
func LoadPaths(paths []string, include []string) (*ast.Program, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}

	files, err := expand(paths, include)
	if err != nil {
		return nil, err
	}

	program := &ast.Program{}
	var errs []error
	for _, file := range files {
		p, err := LoadFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		program.Decls = append(program.Decls, p.Decls...)
	}
	if len(errs) == 1 {
		return nil, errs[0]
	}
	if len(errs) > 1 {
		return nil, &binderr.MultiError{Errors: errs}
	}
	return program, nil
}

func expand(paths []string, include []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, binderr.NewLoadError(path, 0, err.Error())
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			ok, err := Matches(d.Name(), include)
			if err != nil {
				return err
			}
			if ok {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

// Matches reports whether the base name of path matches any pattern.
func Matches(path string, patterns []string) (bool, error) {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		ok, err := filepath.Match(pattern, base)
		if err != nil {
			return false, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
