package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// SourceExt is the extension of nesC source files.
const SourceExt = ".nc"

var skipDirs = map[string]struct{}{
	".git":  {},
	".hg":   {},
	".svn":  {},
	"build": {},
}

// ListSources returns the sorted *.nc files under root, relative to root.
// Entries matched by root/.gitignore or by the exclude patterns (gitignore
// syntax) are skipped, as are hidden and build directories.
func ListSources(root string, exclude []string) ([]string, error) {
	var matchers []*ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matchers = append(matchers, gi)
	}
	if len(exclude) > 0 {
		matchers = append(matchers, ignore.CompileIgnoreLines(exclude...))
	}
	ignored := func(rel string) bool {
		for _, m := range matchers {
			if m.MatchesPath(rel) {
				return true
			}
		}
		return false
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") || ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || strings.HasPrefix(name, ".") {
			return nil
		}
		if filepath.Ext(name) != SourceExt || ignored(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
