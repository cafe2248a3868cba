// Package catalog classifies the files of a run's output tree into fixed
// categories by extension. The catalog is computed fresh from the filesystem
// on every call; nothing is cached.
package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Category buckets an output file by its extension.
type Category string

const (
	CategoryCIF   Category = "cif"
	CategoryPDB   Category = "pdb"
	CategoryJSON  Category = "json"
	CategoryLog   Category = "log"
	CategoryOther Category = "other"
)

// Categories lists all buckets in presentation order.
var Categories = []Category{CategoryCIF, CategoryPDB, CategoryJSON, CategoryLog, CategoryOther}

// Entry is one cataloged file.
type Entry struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// Result maps each category to its entries. Every bucket is present even
// when empty, so the buckets always partition the walked tree.
type Result map[Category][]Entry

// Total returns the number of cataloged files across all buckets.
func (r Result) Total() int {
	n := 0
	for _, entries := range r {
		n += len(entries)
	}
	return n
}

// Classify maps a filename to its category: the extension after the final
// '.' is lower-cased and matched against the known buckets; anything else,
// including extensionless names, is CategoryOther.
func Classify(name string) Category {
	ext := filepath.Ext(name)
	if ext == "" {
		return CategoryOther
	}
	switch Category(strings.ToLower(strings.TrimPrefix(ext, "."))) {
	case CategoryCIF:
		return CategoryCIF
	case CategoryPDB:
		return CategoryPDB
	case CategoryJSON:
		return CategoryJSON
	case CategoryLog:
		return CategoryLog
	default:
		return CategoryOther
	}
}

// Walk recursively catalogs every regular file under dir. A missing dir
// yields all-empty buckets and no error. Entry order within a bucket is walk
// order and is not otherwise normalized. On a filesystem error mid-walk the
// partially built result is returned alongside the error rather than being
// discarded.
func Walk(dir string) (Result, error) {
	result := Result{}
	for _, c := range Categories {
		result[c] = []Entry{}
	}
	if dir == "" {
		return result, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		// No run has published yet; an absent tree is not an error.
		return result, nil
	}

	var walkErr error
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if walkErr == nil {
				walkErr = err
			}
			// Keep what was seen so far and keep walking siblings.
			return fs.SkipDir
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if walkErr == nil {
				walkErr = err
			}
			return nil
		}

		c := Classify(d.Name())
		result[c] = append(result[c], Entry{
			Path:      path,
			Name:      d.Name(),
			SizeBytes: info.Size(),
		})
		return nil
	})
	if walkErr == nil {
		walkErr = err
	}

	return result, walkErr
}

// Contains reports whether path resolves inside dir. Preview and download
// handlers use it to refuse paths outside the published run tree.
func Contains(dir, path string) bool {
	if dir == "" {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
