package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakePurgeStore struct {
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakePurgeStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidCronExpr(t *testing.T) {
	_, err := New(Config{
		Records:  &fakePurgeStore{},
		CronExpr: "not a cron",
		Logger:   discardLogger(),
	})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestPurge_CutoffFromRetention(t *testing.T) {
	store := &fakePurgeStore{deleted: 5}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	p, err := New(Config{
		Records:   store,
		Retention: 48 * time.Hour,
		Logger:    discardLogger(),
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Purge(context.Background()); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if len(store.cutoffs) != 1 {
		t.Fatalf("DeleteOlderThan called %d times, want 1", len(store.cutoffs))
	}

	want := now.Add(-48 * time.Hour)
	if !store.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoffs[0], want)
	}
}

func TestPurge_StoreError(t *testing.T) {
	store := &fakePurgeStore{err: errors.New("db down")}

	p, err := New(Config{
		Records: store,
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Purge(context.Background()); err == nil {
		t.Fatal("expected error from store")
	}
}

func TestNextRun_FollowsSchedule(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	p, err := New(Config{
		Records:  &fakePurgeStore{},
		CronExpr: "0 3 * * *",
		Logger:   discardLogger(),
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 6, 16, 3, 0, 0, 0, time.UTC)
	if got := p.NextRun(); !got.Equal(want) {
		t.Errorf("next run = %v, want %v", got, want)
	}
}
