package facility

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rmp-cli/internal/config"
	"github.com/sells-group/rmp-cli/internal/fetcher"
	"github.com/sells-group/rmp-cli/internal/geofix"
	"github.com/sells-group/rmp-cli/internal/observability"
)

// noCorrection is written to the metadata columns of unchanged records.
const noCorrection = "None"

// Stats summarizes one stream run.
type Stats struct {
	Rows       int
	Suspicious int
	Changed    int
	Unparsable int
	Failed     int
	ByKind     map[string]int
	Elapsed    time.Duration
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithMetrics records per-row counters on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(t *Transformer) {
		t.metrics = m
	}
}

// WithClock replaces the clock used to time runs.
func WithClock(c clockwork.Clock) Option {
	return func(t *Transformer) {
		t.clock = c
	}
}

// WithLogger replaces the global zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transformer) {
		t.log = l
	}
}

// Transformer rewrites a facility CSV stream one record at a time. It holds
// no per-record state, so a single Transformer may run several streams in
// sequence.
type Transformer struct {
	cfg     config.StreamConfig
	metrics *observability.Metrics
	clock   clockwork.Clock
	log     *zap.Logger
}

// NewTransformer creates a Transformer from the stream settings.
func NewTransformer(cfg config.StreamConfig, opts ...Option) *Transformer {
	if cfg.FlushEvery < 1 {
		cfg.FlushEvery = 1
	}
	if cfg.ReportBaseURL == "" {
		cfg.ReportBaseURL = config.DefaultReportBaseURL
	}
	t := &Transformer{cfg: cfg, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = zap.L()
	}
	return t
}

// OutputHeader returns the header written for an input header: Report, the
// input columns, then the metadata columns when enabled.
func (t *Transformer) OutputHeader(h *Header) []string {
	out := make([]string, 0, len(h.names)+1+len(MetadataColumns))
	out = append(out, ColumnReport)
	out = append(out, h.names...)
	if t.cfg.IncludeCorrections {
		out = append(out, MetadataColumns...)
	}
	return out
}

// Run reads the header and every record from r, writing the transformed
// stream to w. Per-record problems never stop the run; only an unreadable
// or invalid header, a read error, a write error, or ctx cancellation do.
// A reader closing the output early yields ErrSinkClosed.
func (t *Transformer) Run(ctx context.Context, r io.Reader, w io.Writer) (stats Stats, err error) {
	start := t.clock.Now()
	stats.ByKind = make(map[string]int)
	defer func() {
		stats.Elapsed = t.clock.Since(start)
		if t.metrics == nil {
			return
		}
		t.metrics.RunDuration.Set(stats.Elapsed.Seconds())
		if err == nil || errors.Is(err, ErrSinkClosed) {
			t.metrics.LastRunSuccess.Set(1)
		} else {
			t.metrics.LastRunSuccess.Set(0)
		}
	}()

	if t.cfg.StripBOM {
		r = fetcher.NewBOMReader(r)
	}
	reader := fetcher.NewCSVReader(r, fetcher.CSVOptions{LazyQuotes: true})

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return stats, ErrNoHeader
	}
	if err != nil {
		return stats, eris.Wrap(err, "facility: read header")
	}
	header, err := NewHeader(names)
	if err != nil {
		return stats, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.OutputHeader(header)); err != nil {
		return stats, sinkError(err, "write header")
	}

	out := make([]string, 0, len(names)+1+len(MetadataColumns))
	for {
		if err := ctx.Err(); err != nil {
			_ = flush(writer)
			return stats, eris.Wrap(err, "facility: stream cancelled")
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = flush(writer)
			return stats, eris.Wrapf(err, "facility: read record %d", stats.Rows+1)
		}

		rec := header.NewRecord(row)
		meta := t.process(rec, &stats)

		out = t.appendRow(out[:0], rec, meta)
		if err := writer.Write(out); err != nil {
			return stats, sinkError(err, "write record")
		}
		if stats.Rows%t.cfg.FlushEvery == 0 {
			if err := flush(writer); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(writer); err != nil {
		return stats, err
	}
	return stats, nil
}

type correction struct {
	changed    bool
	confidence string
	kind       string
}

// process corrects rec in place and returns its metadata.
func (t *Transformer) process(rec *Record, stats *Stats) correction {
	stats.Rows++
	if t.metrics != nil {
		t.metrics.RowsProcessed.Inc()
	}
	meta := correction{confidence: noCorrection, kind: noCorrection}

	res := geofix.CorrectFields(rec)
	switch {
	case res.Err != nil:
		stats.Failed++
		if t.metrics != nil {
			t.metrics.CorrectionFailures.Inc()
		}
		t.log.Warn("facility: correction failed, record passed through",
			zap.Int("row", stats.Rows),
			zap.Error(res.Err),
		)
		return meta
	case !res.Parsed:
		stats.Unparsable++
		if t.metrics != nil {
			t.metrics.RowsUnparsable.Inc()
		}
		t.log.Debug("facility: unparsable coordinates",
			zap.Int("row", stats.Rows),
			zap.String("latitude", res.RawLat),
			zap.String("longitude", res.RawLon),
		)
		return meta
	case !res.Suspicious:
		return meta
	}

	stats.Suspicious++
	if t.metrics != nil {
		t.metrics.RowsSuspicious.Inc()
	}

	best, ok := res.Best()
	if !ok {
		state, _ := rec.Get(ColumnState)
		t.log.Debug("facility: suspicious coordinates left as is",
			zap.Int("row", stats.Rows),
			zap.String("state", state),
			zap.Float64("lat", res.Original.Lat),
			zap.Float64("lon", res.Original.Lon),
		)
		return meta
	}

	rec.Set(ColumnLatitude, formatCoord(best.Coords.Lat))
	rec.Set(ColumnLongitude, formatCoord(best.Coords.Lon))

	meta = correction{changed: true, confidence: best.Confidence.String(), kind: best.Kind.String()}
	stats.Changed++
	stats.ByKind[meta.kind]++
	if t.metrics != nil {
		t.metrics.Corrections.WithLabelValues(meta.kind, meta.confidence).Inc()
	}

	id, _ := rec.Get(ColumnFacilityID)
	t.log.Debug("facility: corrected coordinates",
		zap.Int("row", stats.Rows),
		zap.String("facility_id", id),
		zap.Float64("from_lat", res.Original.Lat),
		zap.Float64("from_lon", res.Original.Lon),
		zap.Float64("to_lat", best.Coords.Lat),
		zap.Float64("to_lon", best.Coords.Lon),
		zap.String("kind", meta.kind),
		zap.String("confidence", meta.confidence),
		zap.Int("candidates", len(res.Candidates)),
	)
	return meta
}

func (t *Transformer) appendRow(dst []string, rec *Record, meta correction) []string {
	state, _ := rec.Get(ColumnState)
	id, _ := rec.Get(ColumnFacilityID)

	dst = append(dst, ReportLink(t.cfg.ReportBaseURL, state, id))
	dst = append(dst, rec.Values()...)
	if t.cfg.IncludeCorrections {
		dst = append(dst, strconv.FormatBool(meta.changed), meta.confidence, meta.kind)
	}
	return dst
}

// formatCoord renders a coordinate with the fewest digits that parse back to
// the same float.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
