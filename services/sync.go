package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"tradequest/models"
	"tradequest/observability"
)

// SnapshotPusher ships one snapshot to a persistence target.
type SnapshotPusher interface {
	Push(ctx context.Context, username string, state *models.Ledger) error
}

// syncJob is one pending snapshot upload.
type syncJob struct {
	username string
	state    *models.Ledger
}

// SyncWorker ships ledger snapshots to its pushers in the background.
// Enqueue never blocks a trade: when the buffer is full the snapshot is
// dropped and a newer one will follow on the next mutation.
type SyncWorker struct {
	pushers []SnapshotPusher
	jobs    chan syncJob
	wg      sync.WaitGroup
}

const defaultSyncBuffer = 64

// NewSyncWorker creates a worker fanning snapshots out to the given pushers.
func NewSyncWorker(pushers ...SnapshotPusher) *SyncWorker {
	return &SyncWorker{
		pushers: pushers,
		jobs:    make(chan syncJob, defaultSyncBuffer),
	}
}

// Enqueue hands a snapshot to the worker without blocking the caller.
func (w *SyncWorker) Enqueue(username string, state *models.Ledger) {
	select {
	case w.jobs <- syncJob{username: username, state: state}:
	default:
		observability.GetMetrics().RecordSyncDropped()
		observability.Warn("sync buffer full, dropping snapshot", "user", username)
	}
}

// Run consumes the queue until ctx is cancelled. Call it from its own goroutine.
func (w *SyncWorker) Run(ctx context.Context) {
	w.wg.Add(1)
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			// drain what is already buffered so a shutdown does not lose progress
			for {
				select {
				case job := <-w.jobs:
					w.push(context.Background(), job)
				default:
					return
				}
			}
		case job := <-w.jobs:
			w.push(ctx, job)
		}
	}
}

// Wait blocks until Run has returned.
func (w *SyncWorker) Wait() {
	w.wg.Wait()
}

func (w *SyncWorker) push(ctx context.Context, job syncJob) {
	for _, pusher := range w.pushers {
		timer := observability.GetMetrics().NewTimer()
		if err := pusher.Push(ctx, job.username, job.state); err != nil {
			timer.ObserveSync("error")
			// fire and forget: log and move on, the next mutation resyncs
			observability.Warn("snapshot sync failed",
				"user", job.username,
				"error", err.Error())
			continue
		}
		timer.ObserveSync("ok")
	}
}

// HTTPPusher posts snapshots to a remote backend.
type HTTPPusher struct {
	backendURL string
	httpClient *http.Client
}

// NewHTTPPusher creates a pusher targeting the given backend base URL.
func NewHTTPPusher(backendURL string) *HTTPPusher {
	return &HTTPPusher{
		backendURL: strings.TrimRight(backendURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Push uploads a versioned snapshot for the user.
func (p *HTTPPusher) Push(ctx context.Context, username string, state *models.Ledger) error {
	snapshot := models.NewSnapshot(username, state)

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = WithCircuitBreaker(ctx, BreakerSync, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			p.backendURL+"/state/"+username, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to build sync request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to post snapshot: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("sync backend returned status %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
