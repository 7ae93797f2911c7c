// Package sheetmeta extracts structural and semantic metadata from
// OOXML spreadsheet packages: drawing anchors with their referenced
// charts, images and diagrams, plus inferred logical cell regions.
package sheetmeta

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/parser"
)

// Mode represents the extraction mode.
type Mode string

const (
	// ModeLight extracts cells and regions only (no drawing parts).
	ModeLight Mode = "light"
	// ModeStandard extracts cells, regions, anchors, charts, diagrams,
	// and form controls.
	ModeStandard Mode = "standard"
	// ModeVerbose additionally extracts cell hyperlinks.
	ModeVerbose Mode = "verbose"
)

// Annotator is the external AI-summarization collaborator. It receives
// the assembled metadata tree as opaque input and may fill the
// Annotation fields; it must never alter other fields.
type Annotator interface {
	AnnotateWorkbook(ctx context.Context, wb *models.WorkbookMetadata) error
}

// Options configures extraction behavior.
type Options struct {
	// Mode specifies the extraction mode (light, standard, verbose).
	Mode Mode
	// BookName overrides the workbook name recorded on the result.
	BookName string
	// IncludeLinks specifies whether to include cell hyperlinks.
	// If nil, defaults to true for verbose mode, false otherwise.
	IncludeLinks *bool
	// IncludePrintAreas specifies whether to include print areas.
	// If nil, defaults to false for light mode, true otherwise.
	IncludePrintAreas *bool
	// Regions tunes the region detection heuristic; the zero value
	// means defaults.
	Regions parser.RegionParams
	// Logger receives structured run logs; nil discards them.
	Logger *logrus.Logger
	// Annotator, when set, annotates the finished tree. Annotation
	// failures degrade to an un-annotated result with a warning.
	Annotator Annotator
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		Mode: ModeStandard,
	}
}

// ShouldIncludeLinks returns whether to include cell hyperlinks.
func (o Options) ShouldIncludeLinks() bool {
	if o.IncludeLinks != nil {
		return *o.IncludeLinks
	}
	return o.Mode == ModeVerbose
}

// ShouldIncludePrintAreas returns whether to include print areas.
func (o Options) ShouldIncludePrintAreas() bool {
	if o.IncludePrintAreas != nil {
		return *o.IncludePrintAreas
	}
	return o.Mode != ModeLight
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
