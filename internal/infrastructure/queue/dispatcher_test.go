package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	fail   bool
}

func (r *recordingRepo) InsertAuthEvent(_ context.Context, e domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("mongo down")
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingRepo) snapshot() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuthEvent(nil), r.events...)
}

func TestDispatcher_WritesInOrderPerUser(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		for _, u := range []string{"alice", "bob"} {
			d.Record(domain.AuthEvent{Type: domain.AuthEventSigninFailure, Username: u, Detail: fmt.Sprint(i)})
		}
	}

	cancel()
	d.Wait()

	events := repo.snapshot()
	if len(events) != 40 {
		t.Fatalf("expected 40 events written, got %d", len(events))
	}
	next := map[string]int{}
	for _, e := range events {
		if e.Detail != fmt.Sprint(next[e.Username]) {
			t.Fatalf("events for %s out of order: got %s, want %d", e.Username, e.Detail, next[e.Username])
		}
		next[e.Username]++
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	first := d.shardIndex("alice")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("alice"); got != first {
			t.Fatalf("shard changed: %d vs %d", got, first)
		}
	}
	if idx := d.shardIndex(""); idx < 0 || idx >= 8 {
		t.Fatalf("shard out of range: %d", idx)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Not started, so nothing drains the channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuthEvent{Type: domain.AuthEventSignup, Username: "alice"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("queue length = %d, want %d", got, channelBuffer)
	}
}

func TestDispatcher_WriteFailureIsSwallowed(t *testing.T) {
	repo := &recordingRepo{fail: true}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.AuthEvent{Type: domain.AuthEventSignout, Username: "alice"})
	cancel()
	d.Wait()

	if len(repo.snapshot()) != 0 {
		t.Fatalf("failed write should not be recorded")
	}
}
