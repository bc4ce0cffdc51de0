package crawler

import (
	"io/fs"
	"os"
	"path/filepath"

	"gopretty/internal/syntax"
)

// Crawler finds the files gopretty can format.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a crawler that skips directories with any of the given
// names.
func NewCrawler(ignored []string) *Crawler {
	return &Crawler{ignored: ignored}
}

// Walk calls onFile for every formattable file under root, in lexical order.
// A root that is itself a file is passed through as is, whatever its
// extension. An error from onFile stops the walk.
func (c *Crawler) Walk(root string, onFile func(path string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return onFile(root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := syntax.ForPath(path); !ok {
			return nil
		}
		return onFile(path)
	})
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
