// Package documents reads candidate profiles and job descriptions from disk.
package documents

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnsupported marks formats that are recognised but cannot be parsed.
	ErrUnsupported = errors.New("format cannot be parsed")
	// ErrEmpty marks documents without any text.
	ErrEmpty = errors.New("document has no text content")
)

// Document is the text of one input file.
type Document struct {
	Path   string
	Name   string
	Format string
	Text   string
}

// Reader extracts plain text from a file.
type Reader interface {
	Read(path string) (string, error)
}

type ReaderFunc func(path string) (string, error)

func (f ReaderFunc) Read(path string) (string, error) { return f(path) }

// Registry maps format tags (lower-case extensions without the dot) to readers.
type Registry struct {
	readers map[string]Reader
}

func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// DefaultRegistry knows every format profilematch accepts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("pdf", ReaderFunc(readPDF))
	r.Register("docx", ReaderFunc(readDOCX))
	r.Register("pptx", ReaderFunc(readPPTX))
	r.Register("txt", ReaderFunc(readPlain))
	r.Register("md", ReaderFunc(readPlain))
	r.Register("doc", ReaderFunc(readLegacy))
	r.Register("ppt", ReaderFunc(readLegacy))
	return r
}

func (r *Registry) Register(format string, reader Reader) {
	r.readers[FormatOf(format)] = reader
}

// Lookup returns the reader for a format tag or file extension.
func (r *Registry) Lookup(format string) (Reader, bool) {
	reader, ok := r.readers[FormatOf(format)]
	return reader, ok
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.Lookup(filepath.Ext(path))
	return ok
}

// Formats lists the registered tags in alphabetical order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.readers))
	for f := range r.readers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FormatOf normalizes ".PDF", "pdf" and "PDF" to "pdf".
func FormatOf(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// NameOf returns the base file name without its extension. Team names come from it.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Names returns the names of the documents in order.
func Names(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name
	}
	return out
}

func readLegacy(string) (string, error) {
	return "", ErrUnsupported
}
