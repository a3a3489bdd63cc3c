package remote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recvStep struct {
	data []byte
	err  error
}

// scriptedTransport is a Transport driven by the test through a channel
// of receive steps. It tracks open/close counts and how many receive
// calls ran concurrently, which must never exceed one.
type scriptedTransport struct {
	recv chan recvStep

	mu       sync.Mutex
	openErrs []error
	authErr  error
	opens    int
	closes   int
	closedCh chan struct{}

	active    atomic.Int32
	maxActive atomic.Int32
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{
		recv:     make(chan recvStep),
		closedCh: make(chan struct{}),
	}
}

func (t *scriptedTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opens++
	if len(t.openErrs) > 0 {
		err := t.openErrs[0]
		t.openErrs = t.openErrs[1:]
		if err != nil {
			return err
		}
	}
	t.closedCh = make(chan struct{})
	return nil
}

func (t *scriptedTransport) Authenticate(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.authErr
}

func (t *scriptedTransport) Receive() ([]byte, error) {
	n := t.active.Add(1)
	defer t.active.Add(-1)
	if n > t.maxActive.Load() {
		t.maxActive.Store(n)
	}

	t.mu.Lock()
	closed := t.closedCh
	t.mu.Unlock()

	select {
	case step := <-t.recv:
		return step.data, step.err
	case <-closed:
		return nil, errors.New("transport closed")
	}
}

func (t *scriptedTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes++
	select {
	case <-t.closedCh:
	default:
		close(t.closedCh)
	}
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSupervisorDeliversMessages(t *testing.T) {
	tr := newScriptedTransport()

	var mu sync.Mutex
	var msgs []string
	sup := NewSupervisor(SupervisorConfig{
		Transport: tr,
		OnMessage: func(data []byte) {
			mu.Lock()
			msgs = append(msgs, string(data))
			mu.Unlock()
		},
		RetryDelay:  10 * time.Millisecond,
		JoinTimeout: time.Second,
	})

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := sup.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	tr.recv <- recvStep{data: []byte("one")}
	tr.recv <- recvStep{data: []byte("two")}

	waitFor(t, "messages", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(msgs) == 2
	})
	if err := sup.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSupervisorReconnects(t *testing.T) {
	tr := newScriptedTransport()

	var mu sync.Mutex
	var msgs []string
	var disconnects atomic.Int32
	sup := NewSupervisor(SupervisorConfig{
		Transport: tr,
		OnMessage: func(data []byte) {
			mu.Lock()
			msgs = append(msgs, string(data))
			mu.Unlock()
		},
		OnDisconnect: func() { disconnects.Add(1) },
		RetryDelay:   10 * time.Millisecond,
		JoinTimeout:  time.Second,
	})

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tr.recv <- recvStep{data: []byte("before")}
	tr.recv <- recvStep{err: errors.New("boom")}
	tr.recv <- recvStep{data: []byte("after")}

	waitFor(t, "message after reconnect", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(msgs) == 2
	})

	if got := sup.Reconnects(); got != 1 {
		t.Errorf("reconnects = %d, want 1", got)
	}
	if got := disconnects.Load(); got != 1 {
		t.Errorf("disconnect callbacks = %d, want 1", got)
	}
	if got := tr.maxActive.Load(); got > 1 {
		t.Errorf("observed %d concurrent receive loops, want at most 1", got)
	}

	if err := sup.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSupervisorStartFatal(t *testing.T) {
	tr := newScriptedTransport()
	tr.openErrs = []error{markFatal(ErrAccessDenied)}

	sup := NewSupervisor(SupervisorConfig{
		Transport: tr,
		Fatal:     isFatal,
	})

	err := sup.Start(context.Background())
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("Start err = %v, want ErrAccessDenied", err)
	}
	if sup.Running() {
		t.Error("loop running after fatal start failure")
	}
}

func TestSupervisorStartFailureWithoutRetry(t *testing.T) {
	tr := newScriptedTransport()
	tr.openErrs = []error{errors.New("unreachable")}

	sup := NewSupervisor(SupervisorConfig{Transport: tr})

	if err := sup.Start(context.Background()); err == nil {
		t.Fatal("expected Start error")
	}
	if sup.Running() {
		t.Error("loop running after start failure")
	}
}

func TestSupervisorRetryOnStartFailure(t *testing.T) {
	tr := newScriptedTransport()
	tr.openErrs = []error{errors.New("unreachable")}

	var mu sync.Mutex
	var msgs []string
	sup := NewSupervisor(SupervisorConfig{
		Transport: tr,
		OnMessage: func(data []byte) {
			mu.Lock()
			msgs = append(msgs, string(data))
			mu.Unlock()
		},
		RetryOnStartFailure: true,
		RetryDelay:          10 * time.Millisecond,
		JoinTimeout:         time.Second,
	})

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tr.recv <- recvStep{data: []byte("late")}
	waitFor(t, "message after background connect", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(msgs) == 1
	})

	if got := sup.Reconnects(); got != 1 {
		t.Errorf("reconnects = %d, want 1", got)
	}
	if err := sup.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSupervisorCloseIdempotent(t *testing.T) {
	tr := newScriptedTransport()
	sup := NewSupervisor(SupervisorConfig{
		Transport:   tr,
		JoinTimeout: time.Second,
	})

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sup.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := sup.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if sup.Running() {
		t.Error("still running after Close")
	}
	if sup.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", sup.State())
	}
}

// stubbornTransport never unblocks its receive on Close, simulating a
// transport whose read cannot be interrupted.
type stubbornTransport struct{ *scriptedTransport }

func (t stubbornTransport) Close() error { return nil }

func TestSupervisorShutdownTimeout(t *testing.T) {
	tr := newScriptedTransport()
	sup := NewSupervisor(SupervisorConfig{
		Transport:   stubbornTransport{tr},
		JoinTimeout: 50 * time.Millisecond,
	})

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := sup.Close(); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("Close err = %v, want ErrShutdownTimeout", err)
	}

	// Unblock the stuck loop so the test does not leak it.
	tr.recv <- recvStep{err: errors.New("released")}
}

func TestSupervisorRestartAfterClose(t *testing.T) {
	tr := newScriptedTransport()
	sup := NewSupervisor(SupervisorConfig{
		Transport:   tr,
		JoinTimeout: time.Second,
	})

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sup.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if sup.State() != StateOpen {
		t.Errorf("state = %v, want open", sup.State())
	}
	if err := sup.Close(); err != nil {
		t.Fatalf("final Close: %v", err)
	}
}
