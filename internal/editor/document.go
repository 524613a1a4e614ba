// Package editor models the documents that sealing operations read from and
// write back to.
package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

var ErrUntitled = errors.New("document has no file on disk")

// Document is a snapshot of an open document.
type Document interface {
	Path() string
	Text() string
	// IsUntitled reports whether the document was never saved to a file.
	IsUntitled() bool
	// IsDirty reports whether the text differs from the file on disk.
	IsDirty() bool
	Selections() []Range
}

// Editable is a document whose selections can be replaced in place.
type Editable interface {
	Document
	// Replace swaps the text of the selection at index and keeps every
	// other selection on the text it covered before.
	Replace(index int, text string) error
	// SelectedText returns the text the selection at index covers.
	SelectedText(index int) (string, error)
}

// Buffer is an in-memory document, optionally backed by a file.
type Buffer struct {
	path       string
	text       string
	untitled   bool
	dirty      bool
	selections []Range
}

// NewBuffer returns a saved document for path holding text.
func NewBuffer(path, text string) *Buffer {
	return &Buffer{path: path, text: text}
}

// NewUntitled returns a document that has never been saved.
func NewUntitled(text string) *Buffer {
	return &Buffer{text: text, untitled: true}
}

// Open loads the file at path. The document keeps the absolute path, since
// parameter defaults are derived from the directories above the file.
func Open(path string) (*Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewBuffer(abs, string(data)), nil
}

// ReadUntitled loads an untitled document from r, e.g. standard input.
func ReadUntitled(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return NewUntitled(string(data)), nil
}

func (b *Buffer) Path() string { return b.path }
func (b *Buffer) Text() string { return b.text }
func (b *Buffer) IsUntitled() bool { return b.untitled }
func (b *Buffer) IsDirty() bool { return b.dirty }
func (b *Buffer) Selections() []Range { return append([]Range(nil), b.selections...) }

// Select replaces the current selections. Ranges keep the given order and
// must lie within the text without overlapping.
func (b *Buffer) Select(ranges ...Range) error {
	for _, r := range ranges {
		if r.Start < 0 || r.End < r.Start || r.End > len(b.text) {
			return fmt.Errorf("selection %s is outside the document (length %d)", r, len(b.text))
		}
	}

	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return fmt.Errorf("selections %s and %s overlap", sorted[i-1], sorted[i])
		}
	}

	b.selections = append([]Range(nil), ranges...)
	return nil
}

// SelectedText returns the text covered by the selection at index.
func (b *Buffer) SelectedText(index int) (string, error) {
	if index < 0 || index >= len(b.selections) {
		return "", fmt.Errorf("no selection %d", index)
	}
	r := b.selections[index]
	return b.text[r.Start:r.End], nil
}

func (b *Buffer) Replace(index int, text string) error {
	if index < 0 || index >= len(b.selections) {
		return fmt.Errorf("no selection %d", index)
	}

	r := b.selections[index]
	delta := len(text) - r.Len()
	b.text = b.text[:r.Start] + text + b.text[r.End:]
	b.selections[index] = Range{Start: r.Start, End: r.Start + len(text)}

	for i, other := range b.selections {
		if i != index && other.Start >= r.End {
			b.selections[i] = Range{Start: other.Start + delta, End: other.End + delta}
		}
	}

	b.dirty = true
	return nil
}

// Save writes the text back to the document's file.
func (b *Buffer) Save() error {
	if b.untitled || b.path == "" {
		return ErrUntitled
	}
	return b.SaveAs(b.path)
}

// SaveAs writes the text to path, which becomes the document's file.
func (b *Buffer) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(abs, []byte(b.text), mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	b.path = abs
	b.untitled = false
	b.dirty = false
	return nil
}
