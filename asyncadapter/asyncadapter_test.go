package asyncadapter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetLaterReturnsResult(t *testing.T) {
	a := New()
	defer a.Close()

	future := GetLater(a, func() (string, bool, error) {
		return "value", true, nil
	})

	result, err := future.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK || result.Value != "value" {
		t.Fatalf("want (value, true) got (%v, %v)", result.Value, result.OK)
	}
}

func TestPutLaterPropagatesError(t *testing.T) {
	a := New()
	defer a.Close()

	wantErr := errors.New("boom")
	future := PutLater(a, func() (string, bool, error) {
		return "", false, wantErr
	})

	_, err := future.Get(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("want %v got %v", wantErr, err)
	}
}

func TestCancelBeforeDequeueSkipsExecution(t *testing.T) {
	a := New()
	defer a.Close()

	ran := make(chan struct{})
	// Occupy the worker with a slow task so the next one sits in the queue
	// long enough to be cancelled before the worker reaches it.
	block := make(chan struct{})
	_ = submit(a, func() (struct{}, error) {
		<-block
		return struct{}{}, nil
	})

	future := RemoveLater(a, func() (string, bool, error) {
		close(ran)
		return "", false, nil
	})
	future.Cancel()
	close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := future.Get(ctx)
	if err == nil {
		t.Fatal("expected an error for a cancelled, never-started task")
	}
	select {
	case <-ran:
		t.Fatal("cancelled task should not have executed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseWaitsForInFlightTask(t *testing.T) {
	a := New()

	started := make(chan struct{})
	finished := make(chan struct{})
	_ = submit(a, func() (struct{}, error) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		close(finished)
		return struct{}{}, nil
	})

	<-started
	a.Close()

	select {
	case <-finished:
	default:
		t.Fatal("Close returned before the in-flight task finished")
	}
}
