package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewJobSystemErrors(t *testing.T) {
	tests := []struct {
		workers, size int
		want          error
	}{
		{0, 1, ErrNoWorkers},
		{-1, 1, ErrNoWorkers},
		{1, -1, ErrNegativeChannelSize},
	}
	for _, tt := range tests {
		if _, err := NewJobSystem(tt.workers, tt.size); !errors.Is(err, tt.want) {
			t.Errorf("NewJobSystem(%d, %d) = %v, want %v", tt.workers, tt.size, err, tt.want)
		}
	}
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	if err != nil {
		t.Fatal(err)
	}

	var completed, failed atomic.Int32
	var mu sync.Mutex
	var failures []error
	boom := errors.New("boom")
	for i := 0; i < 20; i++ {
		i := i
		err := js.Submit(JobTask{
			Name: "counting",
			Run: func() error {
				if i%5 == 0 {
					return boom
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure: func(err error) {
				failed.Add(1)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			},
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	js.Shutdown()

	if completed.Load() != 16 || failed.Load() != 4 {
		t.Errorf("completed %d, failed %d; want 16 and 4", completed.Load(), failed.Load())
	}
	for _, err := range failures {
		if !errors.Is(err, boom) {
			t.Errorf("failure callback got %v", err)
		}
	}
}

func TestJobSystemSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	js.Shutdown()
	js.Shutdown()
	if err := js.Submit(JobTask{Run: func() error { return nil }}); !errors.Is(err, ErrJobSystemClosed) {
		t.Errorf("expected ErrJobSystemClosed, got %v", err)
	}
}

func TestJobSystemRejectsEmptyJob(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer js.Shutdown()
	if err := js.Submit(JobTask{Name: "empty"}); err == nil {
		t.Error("expected an error for a job without Run")
	}
}
