// Package notify delivers "process notifications" jobs to the downstream
// processor. Delivery is queued, fire-and-forget: enqueueing never blocks a
// request and delivery failures are logged, never surfaced.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Job asks the processor to fan out notifications for one gig's new invites.
type Job struct {
	GigID uuid.UUID `json:"gigId"`
}

// Dispatcher queues jobs and drains them to the processor webhook from a
// single worker goroutine.
type Dispatcher struct {
	webhookURL string
	httpClient *http.Client
	timeout    time.Duration

	jobs      chan Job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher and starts its worker. An empty
// webhookURL disables delivery; jobs are accepted and dropped.
func NewDispatcher(webhookURL string, timeoutMS, queueSize int) *Dispatcher {
	timeout := time.Duration(timeoutMS) * time.Millisecond
	d := &Dispatcher{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		jobs:       make(chan Job, queueSize),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

// EnqueueProcessNotifications queues a job for the gig. Never blocks: when
// the queue is full the job is dropped with a warning.
func (d *Dispatcher) EnqueueProcessNotifications(gigID uuid.UUID) {
	select {
	case d.jobs <- Job{GigID: gigID}:
	default:
		log.Warn().
			Str("gig_id", gigID.String()).
			Msg("Notification queue full, dropping job")
	}
}

// Close stops accepting jobs and waits for the worker to drain the queue.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.deliver(job)
	}
}

// deliver posts one job to the processor webhook. Never returns errors; all
// failures are logged at WARN so invite creation is never impacted.
func (d *Dispatcher) deliver(job Job) {
	if d.webhookURL == "" {
		log.Debug().
			Str("gig_id", job.GigID.String()).
			Msg("No notification webhook configured, dropping job")
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		log.Warn().
			Err(err).
			Str("gig_id", job.GigID.String()).
			Msg("Failed to marshal notification job")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		log.Warn().
			Err(err).
			Str("gig_id", job.GigID.String()).
			Msg("Failed to create notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Warn().
				Err(err).
				Dur("timeout", d.timeout).
				Str("gig_id", job.GigID.String()).
				Msg("Notification delivery timed out")
		} else {
			log.Warn().
				Err(err).
				Str("gig_id", job.GigID.String()).
				Msg("Failed to deliver notification job")
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().
			Int("status_code", resp.StatusCode).
			Str("gig_id", job.GigID.String()).
			Msg("Notification processor returned an error status")
		return
	}

	log.Info().
		Str("gig_id", job.GigID.String()).
		Msg("Notification job delivered")
}
