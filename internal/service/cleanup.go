package service

import (
	"context"
	"log"
	"time"
)

// CleanupRunner periodically deletes notifications that have aged out of
// retention or passed their expiry instant.
type CleanupRunner struct {
	svc           NotificationService
	interval      time.Duration
	retentionDays int
}

func NewCleanupRunner(svc NotificationService, interval time.Duration, retentionDays int) *CleanupRunner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupRunner{svc: svc, interval: interval, retentionDays: retentionDays}
}

// Run blocks until ctx is canceled, sweeping once per interval. Intended to
// be launched as a goroutine from main.
func (r *CleanupRunner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := r.svc.CleanupExpired(ctx, r.retentionDays)
			if err != nil {
				log.Printf("notification cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("notification cleanup removed %d records", deleted)
			}
		}
	}
}
