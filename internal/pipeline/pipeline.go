// Package pipeline orchestrates per-paper extraction and reconciles the
// markup and rendered-document paths into final records.
//
// Papers are processed strictly sequentially. Every failure is scoped to a
// single paper or citation; nothing aborts a batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/scholex/relworks/internal/archive"
	"github.com/scholex/relworks/internal/arxiv"
	"github.com/scholex/relworks/internal/bibtex"
	"github.com/scholex/relworks/internal/config"
	"github.com/scholex/relworks/internal/latex"
	"github.com/scholex/relworks/internal/paper"
	"github.com/scholex/relworks/internal/pdf"
	"github.com/scholex/relworks/internal/resolve"
)

// ErrNoSection indicates neither extraction path found a related-work
// section; the paper is excluded from output.
var ErrNoSection = errors.New("no related-work section found")

// MetadataFetcher resolves an arXiv identifier to paper metadata.
type MetadataFetcher interface {
	FetchByID(ctx context.Context, arxivID string) (*paper.Meta, error)
}

// SectionRenderer locates the related-work section in a paper's rendered
// document. The boolean is false when the rendered path failed for any
// reason; rendered-path failure is always a degradation, never an error.
type SectionRenderer interface {
	RenderedSection(ctx context.Context, arxivID string) (string, bool)
}

// RenderedFetcher downloads rendered document bytes.
type RenderedFetcher interface {
	FetchPDF(ctx context.Context, arxivID string, maxBytes int64) ([]byte, error)
}

// Extractor runs the full extraction pipeline for papers.
type Extractor struct {
	Archives     *archive.Resolver
	Meta         MetadataFetcher
	Rendered     SectionRenderer
	Resolver     *resolve.Resolver
	SectionNames []string
	Delay        time.Duration
	MinCitations int
	Log          *log.Logger
}

// New wires an Extractor from configuration and an arXiv client.
func New(cfg *config.Config, client *arxiv.Client, logger *log.Logger) *Extractor {
	return &Extractor{
		Archives: archive.NewResolver(cfg.CacheDir, client),
		Meta:     client,
		Rendered: &pdfRenderer{
			fetch:    client,
			maxBytes: cfg.MaxPDFBytes,
			names:    cfg.SectionNames,
			log:      logger,
		},
		Resolver:     resolve.New(client),
		SectionNames: cfg.SectionNames,
		Delay:        time.Duration(cfg.RequestDelay),
		MinCitations: cfg.MinCitations,
		Log:          logger,
	}
}

func (e *Extractor) logf(format string, args ...interface{}) {
	if e.Log != nil {
		e.Log.Printf(format, args...)
	}
}

// ExtractAll processes identifiers sequentially, skipping papers that fail
// and inserting the politeness delay between them. Only context
// cancellation stops the batch.
func (e *Extractor) ExtractAll(ctx context.Context, arxivIDs []string) ([]paper.Record, error) {
	var records []paper.Record

	for i, id := range arxivIDs {
		if i > 0 && e.Delay > 0 {
			select {
			case <-time.After(e.Delay):
			case <-ctx.Done():
				return records, ctx.Err()
			}
		}

		meta, err := e.Meta.FetchByID(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			e.logf("skipping %s: %v", id, err)
			continue
		}

		record, err := e.ExtractPaper(ctx, meta)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			e.logf("skipping %s: %v", id, err)
			continue
		}

		e.logf("extracted %s: %d chars, %d citations (%d resolved)",
			meta.ArXivID, len(record.Section), len(record.Citations), record.ResolvedCount())
		records = append(records, *record)
	}

	return records, nil
}

// ExtractPaper extracts one paper's record: markup-path section and
// citations, rendered-path prose, reconciled per Reconcile.
func (e *Extractor) ExtractPaper(ctx context.Context, meta *paper.Meta) (*paper.Record, error) {
	bundle, err := e.Archives.Resolve(ctx, meta.ArXivID)
	if err != nil {
		return nil, fmt.Errorf("resolving source bundle: %w", err)
	}

	markup, markupOK := latex.Locate(bundle, e.SectionNames)

	var normalized string
	if markupOK {
		normalized = latex.Normalize(markup)
		if len(normalized) < latex.MinSectionChars {
			markupOK = false
		}
	}

	rendered, renderedOK := e.Rendered.RenderedSection(ctx, meta.ArXivID)

	prose, degraded, ok := Reconcile(normalized, markupOK, rendered, renderedOK)
	if !ok {
		return nil, ErrNoSection
	}
	if degraded {
		e.logf("%s: rendered path failed, falling back to markup text", meta.ArXivID)
	}

	record := &paper.Record{
		ArXivID:   meta.ArXivID,
		AbsURL:    meta.AbsURL,
		Title:     meta.Title,
		Abstract:  meta.Abstract,
		Published: meta.Published,
		Section:   prose,
		Degraded:  degraded,
		Citations: []paper.Citation{},
	}

	// Citations are mined from the raw markup section only; rendered prose
	// carries no citation markup worth parsing.
	if markupOK {
		record.Citations = e.resolveCitations(ctx, meta, markup, bundle)
	}

	if e.MinCitations > 0 && len(record.Citations) < e.MinCitations {
		record.SparseCitations = true
	}

	return record, nil
}

// resolveCitations extracts and resolves the citations of one paper.
// Resolution errors are citation-scoped: logged and skipped.
func (e *Extractor) resolveCitations(ctx context.Context, meta *paper.Meta, markup string, bundle *archive.SourceBundle) []paper.Citation {
	citations := latex.ExtractCitations(markup, meta.ArXivID, meta.Title)
	bib := bibtex.FromBundle(bundle)
	if bib != nil {
		e.logf("%s: bibliography with %d entries", meta.ArXivID, len(bib))
	}

	for i := range citations {
		if ctx.Err() != nil {
			break
		}
		if err := e.Resolver.Resolve(ctx, &citations[i], bib); err != nil {
			e.logf("%s: resolving %q: %v", meta.ArXivID, citations[i].Key, err)
		}
	}
	return citations
}

// Reconcile merges the two extraction paths. Rendered prose, when found, is
// always the final text; normalized markup is the documented fallback. A
// paper found by neither path produces no record.
func Reconcile(normalized string, markupOK bool, rendered string, renderedOK bool) (prose string, degraded, ok bool) {
	switch {
	case renderedOK:
		return rendered, false, true
	case markupOK:
		return normalized, true, true
	default:
		return "", false, false
	}
}

// pdfRenderer is the production SectionRenderer: fetch the PDF, extract
// leading-page text, locate the section by line heuristics.
type pdfRenderer struct {
	fetch    RenderedFetcher
	maxBytes int64
	names    []string
	log      *log.Logger
}

func (r *pdfRenderer) RenderedSection(ctx context.Context, arxivID string) (string, bool) {
	data, err := r.fetch.FetchPDF(ctx, arxivID, r.maxBytes)
	if err != nil {
		r.logf("%s: fetching PDF: %v", arxivID, err)
		return "", false
	}

	text, err := pdf.Text(data)
	if err != nil {
		r.logf("%s: extracting PDF text: %v", arxivID, err)
		return "", false
	}

	return pdf.Section(text, r.names)
}

func (r *pdfRenderer) logf(format string, args ...interface{}) {
	if r.log != nil {
		r.log.Printf(format, args...)
	}
}
