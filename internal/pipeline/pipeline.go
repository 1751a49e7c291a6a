// Package pipeline orchestrates a full run: collect articles, structure them
// with the model, and load the records into the store. Stages run strictly
// in sequence; each run builds fresh component instances and shares no state
// with previous runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketbrief/internal/blob"
	"marketbrief/internal/core"
	"marketbrief/internal/logger"
	"marketbrief/internal/persistence"
	"marketbrief/internal/structure"
)

// Collector yields the scraped articles for one run.
type Collector interface {
	Collect(ctx context.Context) ([]core.ScrapedArticle, error)
}

// Structurer turns a raw blob into records, degrading to synthesized
// fallback records when the model output is unusable.
type Structurer interface {
	StructureOrFallback(ctx context.Context, blobText string) (core.RecordSet, bool)
}

// Options locates the artifacts a run writes.
type Options struct {
	BlobFile    string
	RecordsFile string
	CSVBackup   string
}

// Pipeline wires the run stages together. The store may be nil, in which
// case the load stage writes the CSV backup instead.
type Pipeline struct {
	collector  Collector
	structurer Structurer
	store      persistence.RecordStore
	opts       Options
}

// New creates a Pipeline, filling unset artifact paths with defaults.
func New(collector Collector, structurer Structurer, store persistence.RecordStore, opts Options) *Pipeline {
	if opts.BlobFile == "" {
		opts.BlobFile = "data/raw_blob.txt"
	}
	if opts.RecordsFile == "" {
		opts.RecordsFile = "data/structured_articles.json"
	}
	if opts.CSVBackup == "" {
		opts.CSVBackup = "data/articles_backup.csv"
	}

	return &Pipeline{
		collector:  collector,
		structurer: structurer,
		store:      store,
		opts:       opts,
	}
}

// RunSummary reports what a single pipeline run did.
type RunSummary struct {
	RunID           string
	StartedAt       time.Time
	Duration        time.Duration
	Stages          []string
	CollectedCount  int
	StructuredCount int
	Origin          string
	LoadedCount     int
	CSVBackupPath   string
	Records         []core.ArticleRecord
}

// Run executes collect, structure, and load in order. Structuring and
// loading degrade rather than fail; only the collection stage yielding
// nothing at all is a run failure.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger.Info("Starting pipeline run", "run_id", summary.RunID)

	articles, err := p.collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection failed: %w", err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("collection produced no articles")
	}
	summary.CollectedCount = len(articles)
	summary.Stages = append(summary.Stages, "collect")

	blobText := blob.Build(articles, time.Now().UTC())
	if err := blob.Save(blobText, p.opts.BlobFile); err != nil {
		logger.Warn("Failed to save raw blob", "path", p.opts.BlobFile, "error", err.Error())
	}

	recordSet, usedFallback := p.structurer.StructureOrFallback(ctx, blobText)
	summary.StructuredCount = recordSet.Len()
	summary.Origin = core.OriginLLM
	if usedFallback {
		summary.Origin = core.OriginFallback
	}
	summary.Records = recordSet.Articles
	summary.Stages = append(summary.Stages, "structure")

	if err := structure.SaveRecordSet(recordSet, p.opts.RecordsFile); err != nil {
		logger.Warn("Failed to save structured records", "path", p.opts.RecordsFile, "error", err.Error())
	}

	if recordSet.Len() == 0 {
		logger.Info("No data to load")
	} else {
		p.load(ctx, recordSet.Articles, summary)
		summary.Stages = append(summary.Stages, "load")
	}

	summary.Duration = time.Since(summary.StartedAt)
	logger.Info("Pipeline run complete",
		"run_id", summary.RunID,
		"articles", summary.StructuredCount,
		"origin", summary.Origin,
		"duration", summary.Duration.String())
	return summary, nil
}

// load upserts records into the store, falling back to the CSV backup when
// no store is configured or the upsert fails. A degraded load still counts
// as a successful run.
func (p *Pipeline) load(ctx context.Context, records []core.ArticleRecord, summary *RunSummary) {
	if p.store != nil {
		count, err := p.store.UpsertRecords(ctx, records)
		if err == nil {
			summary.LoadedCount = count
			logger.Info("Loaded records into store", "count", count)
			return
		}
		logger.Warn("Store upsert failed, writing CSV backup", "error", err.Error())
	} else {
		logger.Warn("No record store configured, writing CSV backup")
	}

	if err := persistence.WriteCSVBackup(p.opts.CSVBackup, records); err != nil {
		logger.Error("Failed to write CSV backup", err, "path", p.opts.CSVBackup)
		return
	}
	summary.CSVBackupPath = p.opts.CSVBackup
}
