package media

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/domain"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/metrics"
)

const (
	defaultBatchSize  = 10
	defaultBatchDelay = 500 * time.Millisecond
)

// CleanerConfig is passed in explicitly so tests can shrink the batch
// size and delay.
type CleanerConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

// Result is the outcome of one deletion attempt.
type Result struct {
	PublicID string
	Err      error
}

// Cleaner deletes object-store identifiers in bounded batches with a
// fixed pause between batches, so a large cleanup cannot hammer the
// store. A failed deletion is logged and reported in the results; it
// never stops the rest of the batch and is never retried here.
type Cleaner struct {
	storage    domain.ObjectStorage
	log        *logger.Logger
	metrics    *metrics.Manager
	batchSize  int
	batchDelay time.Duration
}

func NewCleaner(storage domain.ObjectStorage, log *logger.Logger, m *metrics.Manager, cfg CleanerConfig) *Cleaner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = defaultBatchDelay
	}
	return &Cleaner{
		storage:    storage,
		log:        log.Named("media-cleaner"),
		metrics:    m,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
	}
}

// DeleteAll removes every id from the object store and returns one Result
// per attempted id. Blank ids are dropped up front; an empty set returns
// immediately without touching the store. Deletions within a batch run
// concurrently and all outcomes are collected before the next batch
// starts.
func (c *Cleaner) DeleteAll(ctx context.Context, publicIDs []string) []Result {
	ids := make([]string, 0, len(publicIDs))
	seen := make(map[string]struct{}, len(publicIDs))
	for _, id := range publicIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	results := make([]Result, len(ids))
	for start := 0; start < len(ids); start += c.batchSize {
		end := start + c.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := c.storage.Remove(ctx, ids[i])
				results[i] = Result{PublicID: ids[i], Err: err}
			}(i)
		}
		wg.Wait()

		for i := start; i < end; i++ {
			if results[i].Err != nil {
				c.log.Warn("media object deletion failed",
					zap.String("public_id", results[i].PublicID),
					zap.Error(results[i].Err))
				if c.metrics != nil {
					c.metrics.MediaDeleteFailuresTotal.Inc()
				}
				continue
			}
			c.log.Info("media object deleted", zap.String("public_id", results[i].PublicID))
			if c.metrics != nil {
				c.metrics.MediaObjectsDeletedTotal.Inc()
			}
		}

		if end < len(ids) {
			select {
			case <-ctx.Done():
				// Request is gone; mark the rest as not attempted.
				for i := end; i < len(ids); i++ {
					results[i] = Result{PublicID: ids[i], Err: ctx.Err()}
				}
				return results
			case <-time.After(c.batchDelay):
			}
		}
	}
	return results
}

// Failed filters results down to the ones the store rejected.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
