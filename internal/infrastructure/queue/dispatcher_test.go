package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentoplus/hr-system/internal/core/ports"
)

type recordingNotifier struct {
	mu        sync.Mutex
	byRecip   map[string][]string
	delivered chan struct{}
	fail      bool
}

func newRecordingNotifier(expected int) *recordingNotifier {
	return &recordingNotifier{
		byRecip:   make(map[string][]string),
		delivered: make(chan struct{}, expected),
	}
}

func (n *recordingNotifier) Send(_ context.Context, msg ports.Notification) error {
	if n.fail {
		n.delivered <- struct{}{}
		return errors.New("gateway down")
	}
	n.mu.Lock()
	n.byRecip[msg.Recipient] = append(n.byRecip[msg.Recipient], msg.Subject)
	n.mu.Unlock()
	n.delivered <- struct{}{}
	return nil
}

func (n *recordingNotifier) waitFor(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-n.delivered:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, count)
		}
	}
}

func TestDispatcher_DeliversInOrderPerRecipient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newRecordingNotifier(6)
	d := NewDispatcher(3, sink, zerolog.Nop())
	d.Start(ctx)

	subjects := []string{"first", "second", "third"}
	for _, subj := range subjects {
		for _, recipient := range []string{"a@talentoplus.com", "b@talentoplus.com"} {
			if err := d.Send(ctx, ports.Notification{Recipient: recipient, Subject: subj}); err != nil {
				t.Fatalf("enqueue: %v", err)
			}
		}
	}
	sink.waitFor(t, 6)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for recipient, got := range sink.byRecip {
		if len(got) != len(subjects) {
			t.Fatalf("recipient %s: expected %d deliveries, got %d", recipient, len(subjects), len(got))
		}
		for i, subj := range subjects {
			if got[i] != subj {
				t.Fatalf("recipient %s: delivery %d = %q, want %q", recipient, i, got[i], subj)
			}
		}
	}
}

func TestDispatcher_DeliveryFailureDoesNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newRecordingNotifier(2)
	sink.fail = true
	d := NewDispatcher(1, sink, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 2; i++ {
		if err := d.Send(ctx, ports.Notification{Recipient: "a@talentoplus.com", Subject: "x"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	sink.waitFor(t, 2)
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(4, newRecordingNotifier(0), zerolog.Nop())

	first := d.shardIndex("a@talentoplus.com")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("a@talentoplus.com"); got != first {
			t.Fatalf("shard index changed: %d vs %d", got, first)
		}
	}
}
