package jobmgr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) report(s string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, s)
	r.mu.Unlock()
}

func (r *recorder) has(prefix string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartDuplicate(t *testing.T) {
	m := NewManager(nil)
	block := func(ctx context.Context) error { <-ctx.Done(); return nil }

	if err := m.Start(context.Background(), "a", block); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(context.Background(), "a", block); err == nil {
		t.Error("expected duplicate error")
	}
	if diff := cmp.Diff([]string{"a"}, m.List()); diff != "" {
		t.Errorf("List (-want +got):\n%s", diff)
	}
	m.StopAll(context.Background())
	if len(m.List()) != 0 {
		t.Errorf("jobs left after StopAll: %v", m.List())
	}
}

func TestJobErrorReported(t *testing.T) {
	r := &recorder{}
	m := NewManager(r.report)
	_ = m.Start(context.Background(), "fail", func(ctx context.Context) error {
		return errors.New("boom")
	})
	waitFor(t, func() bool { return r.has("error:fail:boom") })
	waitFor(t, func() bool { return len(m.List()) == 0 })
}

func TestEveryRunsImmediatelyAndStops(t *testing.T) {
	m := NewManager(nil)
	var mu sync.Mutex
	runs := 0
	_ = m.Every(context.Background(), "tick", time.Hour, func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	})
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return runs == 1 })

	if err := m.Stop("tick"); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop("tick"); err == nil {
		t.Error("second Stop should fail")
	}
	if got := m.Status(); got != "No jobs are running." {
		t.Errorf("Status = %q", got)
	}
}
