// Package rmpextract fans the multi-valued chemical and NAICS columns of the
// combined RMP facility table out into one row per facility and value.
package rmpextract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rmp-cli/internal/config"
	"github.com/sells-group/rmp-cli/internal/fetcher"
)

// Output column names.
const (
	ColumnChemical  = "Chemical"
	ColumnNAICSCode = "NAICS Code"
)

var (
	// ErrNoHeader is returned when the combined table is empty.
	ErrNoHeader = eris.New("rmpextract: input has no header")
	// ErrMissingColumn is returned when a configured column is absent.
	ErrMissingColumn = eris.New("rmpextract: header missing column")
)

// Stats summarizes one extraction.
type Stats struct {
	Rows         int
	Chemicals    int
	NAICSCodes   int
	InvalidNAICS int
	Sectors      map[string]int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger replaces the global zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		e.log = l
	}
}

// Extractor splits the chemical and NAICS lists of each facility.
type Extractor struct {
	cfg config.ExtractConfig
	log *zap.Logger
}

// New creates an Extractor. Empty column names and separator fall back to
// the RMP defaults.
func New(cfg config.ExtractConfig, opts ...Option) *Extractor {
	if cfg.IDColumn == "" {
		cfg.IDColumn = "EPA Facility ID"
	}
	if cfg.ChemicalsColumn == "" {
		cfg.ChemicalsColumn = "Chemical(s)"
	}
	if cfg.NAICSColumn == "" {
		cfg.NAICSColumn = "NAICS Code(s)"
	}
	if cfg.Separator == "" {
		cfg.Separator = ", "
	}
	e := &Extractor{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.L()
	}
	return e
}

// Run reads the combined table from in and writes the chemical table to
// chemicals and the NAICS table to naics. Empty list items are skipped.
func (e *Extractor) Run(ctx context.Context, in io.Reader, chemicals, naics io.Writer) (Stats, error) {
	stats := Stats{Sectors: make(map[string]int)}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, in, fetcher.CSVOptions{
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		StripBOM:   true,
	})

	chemW := csv.NewWriter(chemicals)
	naicsW := csv.NewWriter(naics)

	var header []string
	for row := range rowCh {
		if header == nil {
			// The header is always sent before the first row.
			header = <-headerCh
			if err := e.checkHeader(header); err != nil {
				return stats, err
			}
			if err := writeHeaders(chemW, naicsW); err != nil {
				return stats, err
			}
		}

		stats.Rows++
		if err := e.fanOut(fetcher.MapRow(header, row), chemW, naicsW, &stats); err != nil {
			return stats, err
		}
		if e.cfg.ProgressEvery > 0 && stats.Rows%e.cfg.ProgressEvery == 0 {
			e.log.Info("rmpextract: progress",
				zap.Int("rows", stats.Rows),
				zap.Int("chemicals", stats.Chemicals),
				zap.Int("naics_codes", stats.NAICSCodes),
			)
		}
	}

	if err := <-errCh; err != nil {
		return stats, eris.Wrap(err, "rmpextract: stream csv")
	}

	if header == nil {
		select {
		case header = <-headerCh:
		default:
			return stats, ErrNoHeader
		}
		if err := e.checkHeader(header); err != nil {
			return stats, err
		}
		if err := writeHeaders(chemW, naicsW); err != nil {
			return stats, err
		}
	}

	for _, w := range []*csv.Writer{chemW, naicsW} {
		w.Flush()
		if err := w.Error(); err != nil {
			return stats, eris.Wrap(err, "rmpextract: flush output")
		}
	}
	return stats, nil
}

func (e *Extractor) checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range []string{e.cfg.IDColumn, e.cfg.ChemicalsColumn, e.cfg.NAICSColumn} {
		if !present[col] {
			missing = append(missing, fmt.Sprintf("%q", col))
		}
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrMissingColumn, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func writeHeaders(chemW, naicsW *csv.Writer) error {
	if err := chemW.Write([]string{"EPA Facility ID", ColumnChemical}); err != nil {
		return eris.Wrap(err, "rmpextract: write chemicals header")
	}
	if err := naicsW.Write([]string{"EPA Facility ID", ColumnNAICSCode}); err != nil {
		return eris.Wrap(err, "rmpextract: write naics header")
	}
	return nil
}

func (e *Extractor) fanOut(rec map[string]string, chemW, naicsW *csv.Writer, stats *Stats) error {
	id := rec[e.cfg.IDColumn]

	for _, chem := range e.split(rec[e.cfg.ChemicalsColumn]) {
		if err := chemW.Write([]string{id, chem}); err != nil {
			return eris.Wrapf(err, "rmpextract: write chemical for %s", id)
		}
		stats.Chemicals++
	}

	for _, raw := range e.split(rec[e.cfg.NAICSColumn]) {
		code := NormalizeNAICS(raw)
		if code == "" {
			continue
		}
		if IsValidNAICS(code) {
			stats.Sectors[NAICSSector(code)]++
		} else {
			stats.InvalidNAICS++
			e.log.Warn("rmpextract: invalid naics code",
				zap.String("facility_id", id),
				zap.String("code", raw),
			)
		}
		if err := naicsW.Write([]string{id, code}); err != nil {
			return eris.Wrapf(err, "rmpextract: write naics code for %s", id)
		}
		stats.NAICSCodes++
	}
	return nil
}

// split breaks a list cell on the separator, trimming items and dropping
// empty ones.
func (e *Extractor) split(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, e.cfg.Separator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
