package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// Request asks for source (of format From) to be converted to To.
// Output is optional; see PathResolver.Resolve for how it is completed.
type Request struct {
	Source string
	Output string
	From   Format
	To     Format
}

// Outcome is the result of a dispatch
type Outcome struct {
	Target Format
	Path   string
	Via    string
	Err    error
}

// OK reports whether the conversion produced its destination
func (o Outcome) OK() bool {
	return o.Err == nil
}

// String renders the outcome as the status text returned to callers
func (o Outcome) String() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return fmt.Sprintf("Document successfully converted to %s via %s: %s", o.Target.Label(), o.Via, o.Path)
}

// Pair is a (source, target) format combination
type Pair struct {
	From Format
	To   Format
}

func (p Pair) String() string {
	return fmt.Sprintf("%s->%s", p.From, p.To)
}

// Config configures a Dispatcher. Zero values select the host defaults; HTMLToPDF
// replaces the playwright browser fallback of the HTML to PDF chain.
type Config struct {
	FS          afero.Fs
	Executor    Executor
	Scratch     ScratchSpace
	Platform    string
	ToolTimeout time.Duration
	HTMLToPDF   Library
	Logger      *slog.Logger
}

// Dispatcher selects and runs the strategy chain for a format pair
type Dispatcher struct {
	fs       afero.Fs
	resolver *PathResolver
	probe    *ToolProbe
	scratch  ScratchSpace
	platform string
	browser  Library
	chains   map[Pair][]Strategy
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher and its chain table for the configured platform
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}
	if cfg.Platform == "" {
		cfg.Platform = runtime.GOOS
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	d := &Dispatcher{
		fs:       cfg.FS,
		resolver: NewPathResolver(cfg.FS),
		probe:    NewToolProbe(cfg.Executor, cfg.FS, cfg.ToolTimeout, cfg.Logger),
		scratch:  cfg.Scratch,
		platform: cfg.Platform,
		browser:  cfg.HTMLToPDF,
		logger:   cfg.Logger,
	}
	if d.browser == nil {
		d.browser = NewBrowserPDFConverter(cfg.FS, cfg.Logger)
	}
	d.chains = d.buildChains()
	return d
}

// buildChains is the static strategy table. Library strategies come first where a
// faithful in-process conversion exists.
func (d *Dispatcher) buildChains() map[Pair][]Strategy {
	fsys := d.fs
	lib := func(l Library) Strategy { return LibraryStrategy{Library: l} }
	office := func(to Format) Strategy { return ToolStrategy{Tool: OfficeSuite(d.platform, to, "")} }

	htmlToPDF := []Strategy{office(FormatPDF), lib(d.browser)}

	docxToPDF := []Strategy{office(FormatPDF), ToolStrategy{Tool: Docx2PDF()}}
	if d.platform == "windows" {
		docxToPDF = []Strategy{ToolStrategy{Tool: Docx2PDF()}, office(FormatPDF)}
	}

	return map[Pair][]Strategy{
		{FormatDOCX, FormatTXT}:      {lib(NewDocxTextConverter(fsys))},
		{FormatDOCX, FormatHTML}:     {lib(NewDocxHTMLConverter(fsys))},
		{FormatDOCX, FormatMarkdown}: {lib(NewDocxMarkdownConverter(fsys))},
		{FormatDOCX, FormatPDF}:      docxToPDF,
		{FormatDOCX, FormatRTF}:      {office(FormatRTF)},
		{FormatDOCX, FormatODT}:      {office(FormatODT)},
		{FormatDOCX, FormatDOC}:      {office(FormatDOC)},

		{FormatHTML, FormatMarkdown}: {lib(NewHTMLMarkdownConverter(fsys))},
		{FormatHTML, FormatTXT}:      {lib(NewHTMLTextConverter(fsys))},
		{FormatHTML, FormatPDF}:      htmlToPDF,
		{FormatHTML, FormatDOCX}: {
			ToolStrategy{Tool: OfficeSuite(d.platform, FormatDOCX, `docx:"MS Word 2007 XML"`)},
			lib(NewHTMLDocxConverter(fsys)),
		},

		{FormatMarkdown, FormatHTML}: {lib(NewMarkdownHTMLConverter(fsys))},
		{FormatMarkdown, FormatDOCX}: {lib(NewMarkdownDocxConverter(fsys))},
		{FormatMarkdown, FormatPDF}: {PipelineStrategy{
			Via:    FormatHTML,
			First:  []Strategy{lib(NewMarkdownHTMLConverter(fsys))},
			Second: htmlToPDF,
		}},

		{FormatPDF, FormatTXT}: {lib(NewPDFTextConverter(fsys))},

		{FormatTXT, FormatDOCX}: {lib(NewTextDocxConverter(fsys)), office(FormatDOCX)},
		{FormatTXT, FormatPDF}:  {office(FormatPDF), lib(NewTextPDFConverter(fsys))},

		{FormatRTF, FormatDOCX}: {office(FormatDOCX)},
		{FormatRTF, FormatPDF}:  {office(FormatPDF)},
		{FormatODT, FormatDOCX}: {office(FormatDOCX)},
		{FormatODT, FormatPDF}:  {office(FormatPDF)},
		{FormatDOC, FormatDOCX}: {office(FormatDOCX), lib(NewLegacyDocConverter(fsys))},
		{FormatDOC, FormatPDF}:  {office(FormatPDF)},
	}
}

// Chain returns the strategies tried for a pair, in order
func (d *Dispatcher) Chain(from, to Format) []Strategy {
	return d.chains[Pair{From: from, To: to}]
}

// Pairs lists every supported pair in a stable order
func (d *Dispatcher) Pairs() []Pair {
	pairs := make([]Pair, 0, len(d.chains))
	for p := range d.chains {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].String() < pairs[j].String()
	})
	return pairs
}

// Dispatch validates the request, resolves the destination and runs the chain until a
// strategy succeeds. Every failure, including a missing source, is reported in
// Outcome.Err rather than by panicking or returning early with partial output.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	outcome := Outcome{Target: req.To}

	if err := d.resolver.CheckSource(req.Source); err != nil {
		outcome.Err = err
		return outcome
	}

	chain := d.Chain(req.From, req.To)
	if len(chain) == 0 {
		outcome.Err = &UnsupportedConversionError{From: req.From, To: req.To}
		return outcome
	}

	resolved, err := d.resolver.Resolve(req.Source, req.Output, req.To)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Path = resolved.Path

	d.logger.DebugContext(ctx, "dispatching conversion",
		"source", req.Source,
		"destination", resolved.Path,
		"pair", Pair{From: req.From, To: req.To}.String(),
		"strategies", len(chain),
	)

	via, failures := d.runChain(ctx, chain, req.Source, resolved.Path)
	if via == "" {
		outcome.Err = &ChainError{Target: req.To, Attempts: failures}
		d.logger.WarnContext(ctx, "conversion failed",
			"source", req.Source,
			"target", req.To,
			"attempts", len(failures),
		)
		return outcome
	}

	outcome.Via = via
	d.logger.InfoContext(ctx, "conversion completed",
		"source", req.Source,
		"destination", resolved.Path,
		"via", via,
	)
	return outcome
}

// runChain tries each strategy once, in order, and stops at the first success
func (d *Dispatcher) runChain(ctx context.Context, chain []Strategy, source, dest string) (string, []Attempt) {
	var failures []Attempt
	for _, strategy := range chain {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Attempt{Strategy: strategy.Name(), Err: err})
			break
		}
		via, attempts := strategy.Run(ctx, d, source, dest)
		if via != "" {
			return via, nil
		}
		failures = append(failures, attempts...)
	}
	return "", failures
}

// Close releases the headless browser if it was started
func (d *Dispatcher) Close() error {
	if closer, ok := d.browser.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
