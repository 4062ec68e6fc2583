// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package poller issues the periodic OBS requests for state that is not
// pushed as events.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	obslog "github.com/Nicosch44/obs-info-hud/internal/log"
	"github.com/Nicosch44/obs-info-hud/internal/obsws"
)

// Cadences holds the polling interval per request kind.
type Cadences struct {
	StreamStatus time.Duration
	ProfileList  time.Duration
	Stats        time.Duration
	RecordStatus time.Duration
	InputMute    time.Duration
}

// DefaultCadences returns the stock polling intervals.
func DefaultCadences() Cadences {
	return Cadences{
		StreamStatus: time.Second,
		ProfileList:  200 * time.Millisecond,
		Stats:        time.Second,
		RecordStatus: 500 * time.Millisecond,
		InputMute:    500 * time.Millisecond,
	}
}

// Job is one periodically sent request.
type Job struct {
	Every   time.Duration
	Request obsws.Request
}

// Scheduler runs one ticker per job. Sends never block; the sender drops
// requests while the session is not identified.
type Scheduler struct {
	sender obsws.Sender
	jobs   []Job
	logger zerolog.Logger
}

// New builds the job list. InputMute is polled only when audioInput is set.
func New(sender obsws.Sender, c Cadences, audioInput string, logger zerolog.Logger) (*Scheduler, error) {
	jobs := []Job{
		{Every: c.StreamStatus, Request: obsws.Request{Kind: obsws.KindGetStreamStatus}},
		{Every: c.ProfileList, Request: obsws.Request{Kind: obsws.KindGetProfileList}},
		{Every: c.Stats, Request: obsws.Request{Kind: obsws.KindGetStats}},
		{Every: c.RecordStatus, Request: obsws.Request{Kind: obsws.KindGetRecordStatus}},
	}
	if audioInput != "" {
		jobs = append(jobs, Job{Every: c.InputMute, Request: obsws.NewInputMuteRequest(audioInput)})
	}
	for _, j := range jobs {
		if j.Every <= 0 {
			return nil, fmt.Errorf("poller: cadence for %s must be positive, got %s", j.Request.Kind, j.Every)
		}
	}
	return &Scheduler{sender: sender, jobs: jobs, logger: logger}, nil
}

// Jobs returns a copy of the configured jobs.
func (s *Scheduler) Jobs() []Job {
	return append([]Job(nil), s.jobs...)
}

// Run starts every ticker and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().
		Str(obslog.FieldEvent, "poller.start").
		Int("jobs", len(s.jobs)).
		Msg("polling started")

	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}
	err := g.Wait()
	s.logger.Info().Str(obslog.FieldEvent, "poller.stop").Msg("polling stopped")
	return err
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sender.Send(job.Request)
		}
	}
}

// AfterStats queues the follow-up for a Stats response.
func (s *Scheduler) AfterStats() {
	s.sender.Send(obsws.Request{Kind: obsws.KindGetVideoSettings})
}

// AfterActiveStreamStatus queues the follow-up for an active StreamStatus.
func (s *Scheduler) AfterActiveStreamStatus() {
	s.sender.Send(obsws.Request{Kind: obsws.KindGetStreamServiceSettings})
}
