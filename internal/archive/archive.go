// Package archive fetches, caches, and unpacks per-paper source bundles.
//
// A bundle is whatever arXiv serves from /src: usually a gzipped tar of the
// LaTeX project, occasionally a bare single file. Unpack failure is not
// fatal; the payload degrades to a single raw text document.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// textSuffixes lists the file extensions inventoried as UTF-8 text:
// markup, bibliography, style, and class files.
var textSuffixes = []string{".tex", ".bib", ".bbl", ".bbx", ".bst", ".cls", ".sty"}

// SourceBundle holds the unpacked source files of one paper.
type SourceBundle struct {
	ID string

	// Files maps basename to decoded text. Same-named files in different
	// subdirectories collide last-write-wins, in archive order.
	Files map[string]string

	// names preserves first-seen archive order of the basenames in Files.
	names []string

	// Raw is the whole payload decoded as text when the bundle could not
	// be unpacked as an archive. Files is nil in that case.
	Raw string
}

// HasInventory reports whether the bundle was unpacked into a file inventory.
func (b *SourceBundle) HasInventory() bool {
	return len(b.Files) > 0
}

// Names returns the inventoried basenames with the given suffix, in
// inventory order. Suffix matching is case-insensitive.
func (b *SourceBundle) Names(suffix string) []string {
	var out []string
	for _, name := range b.names {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			out = append(out, name)
		}
	}
	return out
}

// AddFile records a file in the inventory. Unpack uses it internally;
// callers constructing bundles by hand use it directly.
func (b *SourceBundle) AddFile(name, text string) {
	if b.Files == nil {
		b.Files = make(map[string]string)
	}
	b.add(name, text)
}

// add records a file, keeping last-write-wins semantics for the content
// while preserving the first-seen position in the inventory order.
func (b *SourceBundle) add(name, text string) {
	if _, seen := b.Files[name]; !seen {
		b.names = append(b.names, name)
	}
	b.Files[name] = text
}

// Fetcher downloads raw source-bundle bytes for an identifier.
type Fetcher interface {
	FetchSource(ctx context.Context, arxivID string) ([]byte, error)
}

// Resolver fetches and caches source bundles on disk.
type Resolver struct {
	Dir     string // cache directory for compressed bundles
	Fetcher Fetcher
}

// NewResolver creates a Resolver caching under dir.
func NewResolver(dir string, f Fetcher) *Resolver {
	return &Resolver{Dir: dir, Fetcher: f}
}

// cachePath returns the on-disk cache location for an identifier.
// Old-style identifiers contain a slash, which must not become a subpath.
func (r *Resolver) cachePath(arxivID string) string {
	name := strings.ReplaceAll(arxivID, "/", "_")
	return filepath.Join(r.Dir, name+".tar.gz")
}

// Resolve returns the source bundle for a paper, fetching and caching the
// compressed payload on a cache miss. Unpack failure degrades to raw mode.
func (r *Resolver) Resolve(ctx context.Context, arxivID string) (*SourceBundle, error) {
	content, err := r.loadOrFetch(ctx, arxivID)
	if err != nil {
		return nil, err
	}
	return Unpack(arxivID, content), nil
}

// loadOrFetch returns cached bundle bytes, fetching and persisting them on
// a miss. A cache hit short-circuits the network entirely.
func (r *Resolver) loadOrFetch(ctx context.Context, arxivID string) ([]byte, error) {
	path := r.cachePath(arxivID)

	if content, err := os.ReadFile(path); err == nil {
		return content, nil
	}

	content, err := r.Fetcher.FetchSource(ctx, arxivID)
	if err != nil {
		return nil, fmt.Errorf("fetching source for %s: %w", arxivID, err)
	}

	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("caching bundle: %w", err)
	}

	return content, nil
}

// Unpack decodes a compressed bundle into a file inventory. If the payload
// is not a readable gzipped tar, it is treated as a single document's raw
// text and returned without an inventory.
func Unpack(arxivID string, content []byte) *SourceBundle {
	bundle := &SourceBundle{ID: arxivID, Files: make(map[string]string)}

	gz, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return rawBundle(arxivID, content)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Some /src payloads are a gzipped single file, not a tar.
			return rawBundle(arxivID, content)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Base(hdr.Name)
		if !isTextFile(name) {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return rawBundle(arxivID, content)
		}
		bundle.add(name, decodeText(data))
	}

	if !bundle.HasInventory() {
		return rawBundle(arxivID, content)
	}
	return bundle
}

func rawBundle(arxivID string, content []byte) *SourceBundle {
	// The payload may itself be gzipped even when it is not a tar.
	if gz, err := gzip.NewReader(bytes.NewReader(content)); err == nil {
		if data, err := io.ReadAll(gz); err == nil {
			gz.Close()
			return &SourceBundle{ID: arxivID, Raw: decodeText(data)}
		}
		gz.Close()
	}
	return &SourceBundle{ID: arxivID, Raw: decodeText(content)}
}

func isTextFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range textSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// decodeText interprets bytes as UTF-8, dropping invalid sequences.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
