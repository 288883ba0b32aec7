package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: errors.New("connection refused")}
	permanent := errors.New("bad dsn")

	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{"first try", nil, 1, nil},
		{"recovers", []error{transient, transient}, 3, nil},
		{"gives up", []error{transient, transient, transient, transient}, 3, transient},
		{"permanent", []error{permanent}, 1, permanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, time.Millisecond, func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("down")}
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("Retry() = %v after %d calls", err, calls)
	}
}

func TestOpenRetryPermanentFailure(t *testing.T) {
	start := time.Now()
	if _, err := OpenRetry(context.Background(), "ftp://example.com", 5, time.Second); err == nil {
		t.Fatal("OpenRetry() succeeded for an unsupported scheme")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("OpenRetry() retried a permanent failure")
	}
}
