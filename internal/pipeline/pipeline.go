// Package pipeline runs one full generation pass: read the export,
// classify and aggregate it, then write every dashboard document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/aggregate"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/classify"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/config"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/country"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/dataset"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/metrics"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/pubref"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/report"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/source"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNothingClassified means the run produced no aggregated record, either
// because no keyword file could be loaded or because no row was usable.
// Nothing is written in that case.
var ErrNothingClassified = errors.New("nothing classified")

const progressEvery = 10000

// Row outcomes reported to metrics.
const (
	rowIncluded       = "included"
	rowExcludedNature = "excluded_nature"
	rowNoCountry      = "no_country"
	rowNoDate         = "no_date"
)

// Options configures a run. Zero MinYear/MaxYear leave that side of the
// original-year filter open.
type Options struct {
	Input          string
	OutputDir      string
	KeywordsDir    string
	ReferenceCSV   string
	MatchesLog     string
	MatchThreshold float64
	Windows        int
	MinYear        int
	MaxYear        int

	Logger  logrus.FieldLogger
	Metrics *metrics.Recorder
}

// FromConfig returns the options for cfg, reading its default input file.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Input:          cfg.InputPath(),
		OutputDir:      cfg.OutputDir,
		KeywordsDir:    cfg.KeywordsDir,
		ReferenceCSV:   cfg.ReferenceCSV,
		MatchesLog:     cfg.MatchesLogPath(),
		MatchThreshold: cfg.MatchThreshold,
		Windows:        cfg.Windows,
	}
}

func (o *Options) matchesLog() string {
	if o.MatchesLog != "" {
		return o.MatchesLog
	}
	return filepath.Join(o.OutputDir, report.MatchesFile)
}

// Manifest describes a finished run. It is written as manifest.json.
type Manifest struct {
	RunID              string         `json:"run_id"`
	StartedAt          time.Time      `json:"started_at"`
	FinishedAt         time.Time      `json:"finished_at"`
	Input              string         `json:"input"`
	RowsRead           int            `json:"rows_read"`
	RowsIncluded       int            `json:"rows_included"`
	RowsExcluded       int            `json:"rows_excluded"`
	Countries          int            `json:"countries"`
	CategoryCounts     map[string]int `json:"category_counts"`
	UnmatchedCountries []string       `json:"unmatched_countries"`
	Files              []string       `json:"files"`
}

// Run executes the pipeline described by opts.
func Run(ctx context.Context, opts Options) (*Manifest, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	started := time.Now()
	m := &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
		Input:     opts.Input,
	}
	log = log.WithField("run_id", m.RunID)

	err := run(ctx, opts, log, m)
	status := "success"
	if err != nil {
		status = "failure"
	}
	opts.Metrics.Run(status, time.Since(started))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func run(ctx context.Context, opts Options, log logrus.FieldLogger, m *Manifest) error {
	rules, err := classify.LoadDir(opts.KeywordsDir, log)
	if err != nil {
		if errors.Is(err, classify.ErrNoKeywords) {
			return fmt.Errorf("%w: %v", ErrNothingClassified, err)
		}
		return err
	}
	log.WithField("keywords", rules.KeywordCount()).Info("loaded classification keywords")

	table, err := pubref.Load(ctx, opts.ReferenceCSV, log)
	if err != nil {
		return fmt.Errorf("loading publication reference: %w", err)
	}

	records, err := readRecords(ctx, opts, rules, log, m)
	if err != nil {
		return err
	}

	var base []aggregate.Option
	if opts.MinYear != 0 || opts.MaxYear != 0 {
		w := aggregate.Window{From: opts.MinYear, To: opts.MaxYear}
		if w.To == 0 {
			w.To = 9999
		}
		base = append(base, aggregate.WithWindow(dataset.Original, w))
	}
	engine := build(records, base...)
	if engine.Records() == 0 {
		return fmt.Errorf("%w: no included record has a country and a parseable date", ErrNothingClassified)
	}

	d := aggregate.NewDenominators(table, opts.MatchThreshold)
	w := report.NewWriter(opts.OutputDir)

	for _, b := range dataset.Bases {
		if err := w.WriteSummary(b, report.DashboardFile, report.Summary(engine, d, b)); err != nil {
			return err
		}
	}
	if err := writeWindows(w, d, records, opts.Windows, log); err != nil {
		return err
	}

	countries := engine.AllCountries()
	for _, c := range countries {
		if err := ctx.Err(); err != nil {
			return err
		}
		match := d.Resolve(c)
		opts.Metrics.Resolution(string(match.Method))
		if match.Logged() {
			log.WithFields(logrus.Fields{
				"country": c,
				"match":   match.Name,
				"method":  match.Method,
			}).Debug("resolved country name")
		}
		if err := w.WritePage(c, report.Page(engine, d, c)); err != nil {
			return err
		}
	}

	if _, err := country.UpdateMatchLog(opts.matchesLog(), d.Resolver().Matches()); err != nil {
		return fmt.Errorf("updating country match log: %w", err)
	}

	m.Countries = len(countries)
	m.CategoryCounts = make(map[string]int)
	for c, n := range engine.CategoryCounts() {
		m.CategoryCounts[string(c)] = n
	}
	m.UnmatchedCountries = d.Resolver().Unmatched()
	if m.UnmatchedCountries == nil {
		m.UnmatchedCountries = []string{}
	}
	m.Files = w.Written()
	m.FinishedAt = time.Now().UTC()
	if err := w.WriteJSON(report.ManifestFile, m); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"countries": m.Countries,
		"records":   engine.Records(),
		"files":     len(m.Files) + 1,
		"unmatched": len(m.UnmatchedCountries),
	}).Info("dashboard data generated")
	return nil
}

// readRecords scans the input and returns the included, derived records.
func readRecords(ctx context.Context, opts Options, rules *classify.RuleSet, log logrus.FieldLogger, m *Manifest) ([]*dataset.Record, error) {
	in, err := source.Open(ctx, opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var records []*dataset.Record
	err = dataset.Scan(in, func(rec *dataset.Record) error {
		m.RowsRead++
		if m.RowsRead%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.WithField("rows", m.RowsRead).Info("processing")
		}

		if !rec.Included() {
			m.RowsExcluded++
			opts.Metrics.Row(rowExcludedNature)
			return nil
		}
		rec.Derive(rules)
		m.RowsIncluded++
		switch {
		case len(rec.Countries) == 0:
			opts.Metrics.Row(rowNoCountry)
		case !rec.HasOriginal && !rec.HasNotice:
			opts.Metrics.Row(rowNoDate)
		default:
			opts.Metrics.Row(rowIncluded)
		}
		opts.Metrics.Classified(string(rec.Category))
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Input, err)
	}

	log.WithFields(logrus.Fields{
		"rows":     m.RowsRead,
		"included": m.RowsIncluded,
		"excluded": m.RowsExcluded,
	}).Info("input read")
	return records, nil
}

// Aggregate reads input and accumulates its included records into a fresh
// engine. rules may be empty, in which case every record is Research.
func Aggregate(ctx context.Context, input string, rules *classify.RuleSet, log logrus.FieldLogger) (*aggregate.Engine, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	records, err := readRecords(ctx, Options{Input: input}, rules, log, &Manifest{Input: input})
	if err != nil {
		return nil, err
	}
	return build(records), nil
}

func build(records []*dataset.Record, opts ...aggregate.Option) *aggregate.Engine {
	e := aggregate.NewEngine(opts...)
	for _, rec := range records {
		e.Add(rec)
	}
	return e
}

// writeWindows writes dashboard_table_<n>.json for n = 1..count under each
// basis, covering the n most recent years of that basis.
func writeWindows(w *report.Writer, d *aggregate.Denominators, records []*dataset.Record, count int, log logrus.FieldLogger) error {
	if count <= 0 {
		return nil
	}
	latest := build(records)
	for _, b := range dataset.Bases {
		last, ok := latest.LatestYear(b)
		if !ok {
			log.WithField("basis", b).Warn("no parseable year, skipping windowed tables")
			continue
		}
		for n := 1; n <= count; n++ {
			win := aggregate.Window{From: last - n + 1, To: last}
			e := build(records, aggregate.WithWindow(b, win))
			if err := w.WriteSummary(b, report.WindowFile(n), report.Summary(e, d, b)); err != nil {
				return err
			}
		}
	}
	return nil
}
