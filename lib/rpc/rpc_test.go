// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/libretro/mist/lib/callback"
	"github.com/libretro/mist/lib/clock"
	"github.com/libretro/mist/lib/codec"
	"github.com/libretro/mist/lib/frame"
	"github.com/libretro/mist/lib/protocol"
	"github.com/libretro/mist/lib/result"
	"github.com/libretro/mist/lib/testutil"
)

type echoArgs struct {
	Text string `cbor:"text"`
}

type addArgs struct {
	A int `cbor:"a"`
	B int `cbor:"b"`
}

var (
	opEcho   = Operation[echoArgs, string]{ID: 1, Name: "echo"}
	opAdd    = Operation[addArgs, int]{ID: 2, Name: "add"}
	opFail   = Operation[Unit, Unit]{ID: 3, Name: "fail"}
	opSlow   = Operation[Unit, bool]{ID: 4, Name: "slow"}
	opNotify = Operation[echoArgs, Unit]{ID: 5, Name: "notify", OneWay: true}
	opPanic  = Operation[Unit, Unit]{ID: 6, Name: "panic"}
	opEvents = Operation[Unit, int]{ID: 7, Name: "events"}
	opMaybe  = Operation[bool, *string]{ID: 8, Name: "maybe"}
	opAbsent = Operation[Unit, Unit]{ID: 99, Name: "absent"}
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	client       *Client
	server       *Server
	events       *callback.Queue
	clock        *clock.FakeClock
	hostWriter   *io.PipeWriter
	workerWriter *io.PipeWriter
}

func newHarness(t *testing.T, alive func() bool) *harness {
	t.Helper()
	hostReader, workerWriter := io.Pipe()
	workerReader, hostWriter := io.Pipe()

	h := &harness{
		events:       &callback.Queue{},
		clock:        clock.Fake(epoch),
		hostWriter:   hostWriter,
		workerWriter: workerWriter,
	}
	h.client = NewClient(ClientConfig{
		Writer:   hostWriter,
		Receiver: NewReceiver(hostReader, nil),
		Events:   h.events,
		Alive:    alive,
		Clock:    h.clock,
	})
	h.server = NewServer(ServerConfig{
		Writer:   frame.NewWriter(workerWriter),
		Receiver: NewReceiver(workerReader, nil),
	})
	t.Cleanup(func() {
		hostWriter.Close()
		workerWriter.Close()
	})
	return h
}

// serve runs the dispatch loop until the test ends.
func (h *harness) serve(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, done, 5*time.Second, "server loop exit")
	})
}

func TestCallRoundtrip(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opEcho, func(_ context.Context, args echoArgs) (string, error) {
		return "echo: " + args.Text, nil
	})
	Handle(h.server, opAdd, func(_ context.Context, args addArgs) (int, error) {
		return args.A + args.B, nil
	})
	h.serve(t)

	got, err := Call(context.Background(), h.client, opEcho, echoArgs{Text: "hello"})
	if err != nil {
		t.Fatalf("echo: %v", err)
	}
	if got != "echo: hello" {
		t.Errorf("echo: got %q, want %q", got, "echo: hello")
	}

	sum, err := Call(context.Background(), h.client, opAdd, addArgs{A: 40, B: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum != 42 {
		t.Errorf("add: got %d, want 42", sum)
	}
}

func TestOptionalResult(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opMaybe, func(_ context.Context, present bool) (*string, error) {
		if !present {
			return nil, nil
		}
		value := "public"
		return &value, nil
	})
	h.serve(t)

	absent, err := Call(context.Background(), h.client, opMaybe, false)
	if err != nil {
		t.Fatalf("absent: %v", err)
	}
	if absent != nil {
		t.Errorf("absent: got %q, want nil", *absent)
	}

	present, err := Call(context.Background(), h.client, opMaybe, true)
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	if present == nil || *present != "public" {
		t.Errorf("present: got %v, want \"public\"", present)
	}
}

func TestDomainErrorPassesThrough(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opFail, func(context.Context, Unit) (Unit, error) {
		return Unit{}, result.New(result.ErrFileWriteBatchNotInProgress, "end without begin")
	})
	h.serve(t)

	_, err := Call(context.Background(), h.client, opFail, Unit{})
	if !errors.Is(err, result.ErrFileWriteBatchNotInProgress) {
		t.Fatalf("got %v, want ErrFileWriteBatchNotInProgress", err)
	}
	if result.Of(err) != result.ErrFileWriteBatchNotInProgress.Result() {
		t.Errorf("packed: got %v, want %v", result.Of(err), result.ErrFileWriteBatchNotInProgress.Result())
	}
}

func TestHandlerPanicBecomesInternalError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opPanic, func(context.Context, Unit) (Unit, error) {
		panic("index out of range")
	})
	Handle(h.server, opEcho, func(_ context.Context, args echoArgs) (string, error) {
		return args.Text, nil
	})
	h.serve(t)

	_, err := Call(context.Background(), h.client, opPanic, Unit{})
	if !errors.Is(err, result.ErrInternal) {
		t.Fatalf("got %v, want ErrInternal", err)
	}

	got, err := Call(context.Background(), h.client, opEcho, echoArgs{Text: "still serving"})
	if err != nil || got != "still serving" {
		t.Errorf("after panic: got %q, %v", got, err)
	}
}

func TestUnknownOperation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.serve(t)

	_, err := Call(context.Background(), h.client, opAbsent, Unit{})
	if !errors.Is(err, result.ErrInternal) {
		t.Errorf("got %v, want ErrInternal", err)
	}
}

func TestTimeoutThenRecovery(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	release := make(chan struct{})
	Handle(h.server, opSlow, func(context.Context, Unit) (bool, error) {
		<-release
		return true, nil
	})
	Handle(h.server, opEcho, func(_ context.Context, args echoArgs) (string, error) {
		return args.Text, nil
	})
	h.serve(t)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	errs := make(chan error, 1)
	go func() {
		_, err := Call(context.Background(), h.client, opSlow, Unit{})
		errs <- err
	}()
	h.clock.WaitForTimers(1)
	h.clock.Advance(DefaultTimeout)

	err := testutil.RequireReceive(t, errs, 5*time.Second, "slow call result")
	if !errors.Is(err, result.ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}

	// The late answer to the timed-out call arrives ahead of the next
	// response and must not be mistaken for it.
	close(release)
	got, err := Call(context.Background(), h.client, opEcho, echoArgs{Text: "next"})
	if err != nil {
		t.Fatalf("call after timeout: %v", err)
	}
	if got != "next" {
		t.Errorf("call after timeout: got %q, want %q", got, "next")
	}
}

func TestOperationTimeoutOverride(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	slowInit := Operation[Unit, bool]{ID: 4, Name: "slow", Timeout: 2 * time.Second}
	// No server loop: the request is read but never answered.

	errs := make(chan error, 1)
	go func() {
		_, err := Call(context.Background(), h.client, slowInit, Unit{})
		errs <- err
	}()
	h.clock.WaitForTimers(1)
	h.clock.Advance(DefaultTimeout)
	select {
	case err := <-errs:
		t.Fatalf("call ended at the default timeout: %v", err)
	default:
	}
	h.clock.Advance(2*time.Second - DefaultTimeout)

	err := testutil.RequireReceive(t, errs, 5*time.Second, "override result")
	if !errors.Is(err, result.ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout", err)
	}
}

func TestEventsDuringCallAreQueuedInOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opEvents, func(context.Context, Unit) (int, error) {
		for kind := uint32(1); kind <= 3; kind++ {
			data, _ := codec.Marshal(map[string]uint32{"n": kind})
			if err := h.server.Emit(protocol.Event{Source: 7, Kind: kind, Data: data}); err != nil {
				return 0, err
			}
		}
		return 3, nil
	})
	h.serve(t)

	count, err := Call(context.Background(), h.client, opEvents, Unit{})
	if err != nil || count != 3 {
		t.Fatalf("events call: got %d, %v", count, err)
	}
	for want := uint32(1); want <= 3; want++ {
		entry, ok := h.events.Next()
		if !ok {
			t.Fatalf("event %d missing", want)
		}
		if entry.Kind != want || entry.Source != 7 {
			t.Errorf("event: got kind %d source %d, want kind %d source 7", entry.Kind, entry.Source, want)
		}
		h.events.Advance()
	}
}

// drainUntil polls the client until the queue holds n entries.
func drainUntil(t *testing.T, h *harness, n int) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for h.events.Len() < n {
			h.client.Poll()
			runtime.Gosched()
		}
	}()
	testutil.RequireClosed(t, done, 5*time.Second, "waiting for %d events", n)
}

func TestPollInterleavedWithCalls(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opEcho, func(_ context.Context, args echoArgs) (string, error) {
		return args.Text, nil
	})
	h.serve(t)

	emit := func(kind uint32) {
		t.Helper()
		if err := h.server.Emit(protocol.Event{Kind: kind}); err != nil {
			t.Fatalf("Emit(%d): %v", kind, err)
		}
	}

	emit(1)
	drainUntil(t, h, 1)
	if _, err := Call(context.Background(), h.client, opEcho, echoArgs{Text: "a"}); err != nil {
		t.Fatalf("echo: %v", err)
	}
	emit(2)
	emit(3)
	drainUntil(t, h, 3)
	h.client.Poll()

	for want := uint32(1); want <= 3; want++ {
		entry, ok := h.events.Next()
		if !ok || entry.Kind != want {
			t.Fatalf("entry %d: got %+v, %v", want, entry, ok)
		}
		h.events.Advance()
	}
}

func TestPollWithNothingPendingReturns(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.client.Poll()
	if h.events.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.events.Len())
	}
}

// refusingWriter fails the test on any write.
type refusingWriter struct{ t *testing.T }

func (w refusingWriter) Write(p []byte) (int, error) {
	w.t.Errorf("unexpected write of %d bytes to a dead worker", len(p))
	return 0, io.ErrClosedPipe
}

func TestCallOnDeadPeerReturnsLostWithoutIO(t *testing.T) {
	t.Parallel()
	hostReader, workerWriter := io.Pipe()
	t.Cleanup(func() { workerWriter.Close() })
	client := NewClient(ClientConfig{
		Writer:   refusingWriter{t},
		Receiver: NewReceiver(hostReader, nil),
		Events:   &callback.Queue{},
		Alive:    func() bool { return false },
	})

	_, err := Call(context.Background(), client, opEcho, echoArgs{Text: "x"})
	if !errors.Is(err, result.ErrLost) {
		t.Errorf("got %v, want ErrLost", err)
	}
}

func TestStreamEndDuringCallReturnsLost(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	errs := make(chan error, 1)
	go func() {
		_, err := Call(context.Background(), h.client, opSlow, Unit{})
		errs <- err
	}()
	h.clock.WaitForTimers(1)
	h.workerWriter.Close()

	err := testutil.RequireReceive(t, errs, 5*time.Second, "call result after worker exit")
	if !errors.Is(err, result.ErrLost) {
		t.Errorf("got %v, want ErrLost", err)
	}

	_, err = Call(context.Background(), h.client, opEcho, echoArgs{})
	if !errors.Is(err, result.ErrLost) {
		t.Errorf("call after stream end: got %v, want ErrLost", err)
	}
}

func TestCloseFailsWaitingCall(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	errs := make(chan error, 1)
	go func() {
		_, err := Call(context.Background(), h.client, opSlow, Unit{})
		errs <- err
	}()
	h.clock.WaitForTimers(1)
	h.client.Close()

	err := testutil.RequireReceive(t, errs, 5*time.Second, "call result after Close")
	if !errors.Is(err, result.ErrLost) {
		t.Errorf("got %v, want ErrLost", err)
	}
	if _, err := Call(context.Background(), h.client, opEcho, echoArgs{}); !errors.Is(err, result.ErrLost) {
		t.Errorf("call after Close: got %v, want ErrLost", err)
	}
}

func TestContextCancelEndsWait(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() {
		_, err := Call(ctx, h.client, opSlow, Unit{})
		errs <- err
	}()
	h.clock.WaitForTimers(1)
	cancel()

	err := testutil.RequireReceive(t, errs, 5*time.Second, "cancelled call result")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestOneWayDoesNotWait(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	received := make(chan string, 1)
	Handle(h.server, opNotify, func(_ context.Context, args echoArgs) (Unit, error) {
		received <- args.Text
		return Unit{}, nil
	})
	Handle(h.server, opEcho, func(_ context.Context, args echoArgs) (string, error) {
		return args.Text, nil
	})
	h.serve(t)

	if _, err := Call(context.Background(), h.client, opNotify, echoArgs{Text: "bye"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if h.clock.PendingCount() != 0 {
		t.Errorf("one-way call armed %d deadlines", h.clock.PendingCount())
	}
	if got := testutil.RequireReceive(t, received, 5*time.Second, "one-way delivery"); got != "bye" {
		t.Errorf("got %q, want %q", got, "bye")
	}

	// No response was sent, so the next call sees only its own.
	if got, err := Call(context.Background(), h.client, opEcho, echoArgs{Text: "after"}); err != nil || got != "after" {
		t.Errorf("echo after one-way: got %q, %v", got, err)
	}
}

func TestConcurrentCallersAreSerialized(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opEcho, func(_ context.Context, args echoArgs) (string, error) {
		return args.Text, nil
	})
	h.serve(t)

	const goroutines = 8
	const perGoroutine = 25
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perGoroutine {
				text := fmt.Sprintf("%d/%d", g, i)
				got, err := Call(context.Background(), h.client, opEcho, echoArgs{Text: text})
				if err != nil {
					t.Errorf("%s: %v", text, err)
					return
				}
				if got != text {
					t.Errorf("got %q, want %q", got, text)
				}
			}
		}()
	}
	wg.Wait()
}

func TestServerPollWaitsThenDrains(t *testing.T) {
	t.Parallel()
	serverClock := clock.Fake(epoch)
	hostReader, workerWriter := io.Pipe()
	workerReader, hostWriter := io.Pipe()
	t.Cleanup(func() {
		hostWriter.Close()
		workerWriter.Close()
	})
	server := NewServer(ServerConfig{
		Writer:   frame.NewWriter(workerWriter),
		Receiver: NewReceiver(workerReader, nil),
		Clock:    serverClock,
	})
	client := NewClient(ClientConfig{
		Writer:   hostWriter,
		Receiver: NewReceiver(hostReader, nil),
		Events:   &callback.Queue{},
	})
	var notified []string
	Handle(server, opNotify, func(_ context.Context, args echoArgs) (Unit, error) {
		notified = append(notified, args.Text)
		return Unit{}, nil
	})

	// Nothing pending: Poll(0) returns at once, Poll(50ms) returns when
	// its deadline passes.
	if served, err := server.Poll(context.Background(), 0); served != 0 || err != nil {
		t.Fatalf("Poll(0) = %d, %v; want 0, nil", served, err)
	}
	idle := make(chan int, 1)
	go func() {
		served, _ := server.Poll(context.Background(), 50*time.Millisecond)
		idle <- served
	}()
	serverClock.WaitForTimers(1)
	serverClock.Advance(50 * time.Millisecond)
	if served := testutil.RequireReceive(t, idle, 5*time.Second, "idle poll"); served != 0 {
		t.Errorf("idle poll served %d, want 0", served)
	}

	for _, text := range []string{"a", "b", "c"} {
		if _, err := Call(context.Background(), client, opNotify, echoArgs{Text: text}); err != nil {
			t.Fatalf("notify %s: %v", text, err)
		}
	}
	total := 0
	for total < 3 {
		served, err := server.Poll(context.Background(), time.Hour)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		total += served
	}
	if fmt.Sprint(notified) != "[a b c]" {
		t.Errorf("served in order %v, want [a b c]", notified)
	}
	if serverClock.PendingCount() != 0 {
		t.Errorf("Poll left %d deadlines armed", serverClock.PendingCount())
	}

	hostWriter.Close()
	if _, err := server.Poll(context.Background(), time.Hour); !errors.Is(err, ErrClosed) {
		t.Errorf("Poll after stream end: got %v, want ErrClosed", err)
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()
	catalog, err := NewCatalog(opAdd.Descriptor(), opEcho.Descriptor(), opNotify.Descriptor())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	all := catalog.All()
	if len(all) != 3 || all[0].Name != "echo" || all[2].Name != "notify" {
		t.Errorf("All() not ordered by id: %v", all)
	}
	if descriptor, ok := catalog.ByName("add"); !ok || descriptor.ID != 2 || !descriptor.HasResult() {
		t.Errorf("ByName(add) = %+v, %v", descriptor, ok)
	}
	if descriptor, ok := catalog.Lookup(5); !ok || descriptor.HasResult() || !descriptor.HasArgs() {
		t.Errorf("Lookup(5) = %+v, %v", descriptor, ok)
	}
	if _, ok := catalog.Lookup(42); ok {
		t.Error("Lookup(42) found an operation")
	}
}

func TestCatalogRejectsInconsistentTables(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		descriptors []Descriptor
	}{
		{"duplicate id", []Descriptor{opEcho.Descriptor(), Operation[Unit, Unit]{ID: 1, Name: "other"}.Descriptor()}},
		{"duplicate name", []Descriptor{opEcho.Descriptor(), Operation[Unit, Unit]{ID: 50, Name: "echo"}.Descriptor()}},
		{"one-way with result", []Descriptor{Operation[Unit, bool]{ID: 51, Name: "bad", OneWay: true}.Descriptor()}},
		{"unnamed", []Descriptor{Operation[Unit, Unit]{ID: 52}.Descriptor()}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewCatalog(test.descriptors...); err == nil {
				t.Error("NewCatalog accepted an inconsistent table")
			}
		})
	}
}

func TestDuplicateHandlerPanics(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	Handle(h.server, opEcho, func(context.Context, echoArgs) (string, error) { return "", nil })
	defer func() {
		if recover() == nil {
			t.Error("second Handle for the same operation did not panic")
		}
	}()
	Handle(h.server, opEcho, func(context.Context, echoArgs) (string, error) { return "", nil })
}

func TestReceiverSkipsMalformedEnvelopes(t *testing.T) {
	t.Parallel()
	reader, writer := io.Pipe()
	receiver := NewReceiver(reader, nil)

	go func() {
		defer writer.Close()
		frame.Write(writer, []byte{0xFF, 0x00, 0x13})
		payload, _ := protocol.Encode(protocol.NewEvent(protocol.Event{Kind: 704}))
		frame.Write(writer, payload)
	}()

	envelope := testutil.RequireReceive(t, receiver.Envelopes(), 5*time.Second, "valid envelope")
	if envelope.Kind != protocol.KindEvent || envelope.Event.Kind != 704 {
		t.Errorf("got %+v, want event 704", envelope)
	}
	testutil.RequireClosed(t, receiver.Done(), 5*time.Second, "receiver exit")
	if receiver.Err() != nil {
		t.Errorf("clean end of stream reported %v", receiver.Err())
	}
}

func TestReceiverReportsTruncatedStream(t *testing.T) {
	t.Parallel()
	reader, writer := io.Pipe()
	receiver := NewReceiver(reader, nil)
	go func() {
		writer.Write([]byte{10, 0, 0, 0, 1, 2})
		writer.Close()
	}()
	testutil.RequireClosed(t, receiver.Done(), 5*time.Second, "receiver exit")
	if !errors.Is(receiver.Err(), frame.ErrTruncated) {
		t.Errorf("got %v, want frame.ErrTruncated", receiver.Err())
	}
}
