package syntax

import (
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Language is a grammar the formatter can parse.
type Language struct {
	Name       string
	Extensions []string

	grammar func() *sitter.Language
	// verbatim lists node types whose source text is reproduced exactly.
	verbatim map[string]bool
}

// Go is the Go grammar.
var Go = &Language{
	Name:       "go",
	Extensions: []string{".go"},
	grammar:    golang.GetLanguage,
	verbatim: map[string]bool{
		"interpreted_string_literal": true,
		"raw_string_literal":         true,
		"rune_literal":               true,
	},
}

var languages = []*Language{Go}

// Lookup returns the language registered under name.
func Lookup(name string) (*Language, error) {
	for _, l := range languages {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("unsupported language: %s", name)
}

// ForPath picks the language by file extension.
func ForPath(path string) (*Language, bool) {
	ext := filepath.Ext(path)
	for _, l := range languages {
		for _, e := range l.Extensions {
			if e == ext {
				return l, true
			}
		}
	}
	return nil, false
}

// Verbatim reports whether n must be reproduced exactly as written.
func (l *Language) Verbatim(n *sitter.Node) bool {
	return l.verbatim[n.Type()]
}
