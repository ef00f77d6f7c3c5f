package util

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParallelVisitsAll(t *testing.T) {
	var mu sync.Mutex
	var got []int
	err := Parallel(context.Background(), []int{3, 1, 2, 5, 4}, 2, func(_ context.Context, n int) error {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Ints(got)
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestParallelReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Parallel(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestEachContinuesAfterError(t *testing.T) {
	var calls, failures atomic.Int32
	Each(context.Background(), []string{"a", "b", "c"}, 3, func(_ context.Context, s string) error {
		calls.Add(1)
		if s == "b" {
			return errors.New("bad")
		}
		return nil
	}, func(string, error) { failures.Add(1) })

	if calls.Load() != 3 || failures.Load() != 1 {
		t.Errorf("calls=%d failures=%d", calls.Load(), failures.Load())
	}
}
