// Package container defines the document model handed to container builders
// and the builder capability the conversion pipeline consumes.
//
// Producing real EPUB containers (manifest, table of contents, embedded
// images) is the job of a separate builder implementation. XHTMLBuilder
// writes the document as a single XHTML file, which the converter accepts as
// input.
package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one fetched page ready for packaging.
type Document struct {
	Title   string
	Lang    string
	Content string
}

// Builder produces an intermediate container file for doc and returns its
// path. The caller takes ownership of the file.
type Builder interface {
	Build(ctx context.Context, doc Document) (string, error)
	// Format is the extension of the files Build produces.
	Format() string
}

// XHTMLBuilder writes Document.Content to a fresh file in Dir.
type XHTMLBuilder struct {
	Dir string
}

// Format implements Builder.
func (XHTMLBuilder) Format() string { return "xhtml" }

// Build implements Builder.
func (b XHTMLBuilder) Build(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", errors.New("container: document has no content")
	}

	file, err := os.CreateTemp(b.Dir, "build-*.xhtml")
	if err != nil {
		return "", fmt.Errorf("container: create file: %w", err)
	}
	path := file.Name()
	if _, err := file.WriteString(doc.Content); err != nil {
		file.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("container: write %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("container: close %s: %w", filepath.Base(path), err)
	}
	return path, nil
}
