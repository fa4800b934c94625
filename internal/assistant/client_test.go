// Copyright (c) 2025 Kamal Singh Bisht
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// streamHandler writes the given SSE frames and returns, closing the stream.
func streamHandler(frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, f := range frames {
			w.Write([]byte("data: " + f + "\n\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// update records one onUpdate invocation.
type update struct {
	content   string
	streaming bool
	chart     string
}

func collectUpdates(updates *[]update) UpdateFunc {
	return func(content string, streaming bool, chart string) {
		*updates = append(*updates, update{content, streaming, chart})
	}
}

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: baseURL})
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestSendStreamTokenAccumulation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stream" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("question"); got != "total cost?" {
			t.Errorf("question = %q, want %q", got, "total cost?")
		}
		streamHandler(`{"token":"$4"}`, `{"token":"2"}`, `{"done":true}`)(w, r)
	}))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "total cost?", collectUpdates(&updates))

	if out.State != StateStreamDone {
		t.Fatalf("State = %v, want StateStreamDone", out.State)
	}
	if out.Content != "$42" {
		t.Errorf("Content = %q, want %q", out.Content, "$42")
	}
	if out.TransportFailed {
		t.Error("TransportFailed = true on a clean stream")
	}

	want := []update{
		{"$4", true, ""},
		{"$42", true, ""},
		{"$42", false, ""},
	}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d: %v", len(updates), len(want), updates)
	}
	for i, w := range want {
		if updates[i] != w {
			t.Errorf("update %d = %+v, want %+v", i, updates[i], w)
		}
	}
}

func TestSendMalformedFrameDropped(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`{"token":"a"}`,
		`{definitely not json`,
		`{"token":"b"}`,
		`{"done":true}`,
	))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateStreamDone {
		t.Fatalf("State = %v, want StateStreamDone", out.State)
	}
	if out.Content != "ab" {
		t.Errorf("Content = %q, want %q (malformed frame must be skipped)", out.Content, "ab")
	}
}

func TestSendChartDeliveredAtTerminal(t *testing.T) {
	srv := httptest.NewServer(streamHandler(
		`{"token":"see chart"}`,
		`{"chart":"aGVsbG8="}`,
		`{"done":true}`,
	))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.Chart != "aGVsbG8=" {
		t.Errorf("Chart = %q, want %q", out.Chart, "aGVsbG8=")
	}

	last := updates[len(updates)-1]
	if last.chart != "aGVsbG8=" || last.streaming {
		t.Errorf("terminal update = %+v, want chart with streaming=false", last)
	}
	// Mid-stream updates never carry the chart.
	for _, u := range updates[:len(updates)-1] {
		if u.chart != "" {
			t.Errorf("mid-stream update carried chart: %+v", u)
		}
	}
}

func TestSendDoneUsesFullResponseWhenNoTokens(t *testing.T) {
	srv := httptest.NewServer(streamHandler(`{"done":true,"full_response":"complete answer"}`))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateStreamDone {
		t.Fatalf("State = %v, want StateStreamDone", out.State)
	}
	if out.Content != "complete answer" {
		t.Errorf("Content = %q, want %q", out.Content, "complete answer")
	}
}

func TestSendDoneEmptyStream(t *testing.T) {
	srv := httptest.NewServer(streamHandler(`{"done":true}`))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.Content != NoResponseText {
		t.Errorf("Content = %q, want %q", out.Content, NoResponseText)
	}
}

func TestSendDoneWinsOverErrorInSameFrame(t *testing.T) {
	srv := httptest.NewServer(streamHandler(`{"token":"ok"}`, `{"done":true,"error":"late failure"}`))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateStreamDone {
		t.Errorf("State = %v, want StateStreamDone (done takes precedence)", out.State)
	}
	if out.Content != "ok" {
		t.Errorf("Content = %q, want %q", out.Content, "ok")
	}
}

func TestSendServerSignaledError(t *testing.T) {
	var fallbackCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/query" {
			fallbackCalls.Add(1)
			return
		}
		streamHandler(`{"error":"model overloaded"}`)(w, r)
	}))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateStreamErrored {
		t.Fatalf("State = %v, want StateStreamErrored", out.State)
	}
	if out.Content != "❌ model overloaded" {
		t.Errorf("Content = %q, want error text verbatim with marker", out.Content)
	}
	if out.Err == nil {
		t.Error("Err = nil, want server error")
	}
	if fallbackCalls.Load() != 0 {
		t.Error("server-signaled error must not trigger the fallback")
	}
}

// =============================================================================
// PARTIAL CONTENT AND FALLBACK TESTS
// =============================================================================

func TestSendPartialContentBeatsFallback(t *testing.T) {
	var fallbackCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/query" {
			fallbackCalls.Add(1)
			w.Write([]byte(`{"response":"Hello!"}`))
			return
		}
		// Two tokens, then the connection drops with no terminal frame.
		streamHandler(`{"token":"H"}`, `{"token":"i"}`)(w, r)
	}))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateStreamDone {
		t.Fatalf("State = %v, want StateStreamDone", out.State)
	}
	if out.Content != "Hi" {
		t.Errorf("Content = %q, want partial %q over fallback answer", out.Content, "Hi")
	}
	if !out.TransportFailed {
		t.Error("TransportFailed = false, want true after a dropped stream")
	}
	if fallbackCalls.Load() != 0 {
		t.Error("fallback fired despite partial content")
	}

	last := updates[len(updates)-1]
	if last.content != "Hi" || last.streaming {
		t.Errorf("terminal update = %+v, want partial content with streaming=false", last)
	}
}

func TestSendFallbackOnEmptyDrop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stream":
			// Stream ends before any frame.
			streamHandler()(w, r)
		case "/query":
			if r.Method != http.MethodPost {
				t.Errorf("fallback method = %q, want POST", r.Method)
			}
			w.Write([]byte(`{"response":"42"}`))
		}
	}))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateFallbackDone {
		t.Fatalf("State = %v, want StateFallbackDone", out.State)
	}
	if out.Content != "42" {
		t.Errorf("Content = %q, want %q", out.Content, "42")
	}
	if !out.TransportFailed {
		t.Error("TransportFailed = false, want true")
	}
}

func TestSendFallbackOnStreamOpenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stream":
			http.Error(w, "no streaming here", http.StatusNotFound)
		case "/query":
			w.Write([]byte(`{"answer":"from fallback"}`))
		}
	}))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateFallbackDone {
		t.Fatalf("State = %v, want StateFallbackDone", out.State)
	}
	if out.Content != "from fallback" {
		t.Errorf("Content = %q, want %q", out.Content, "from fallback")
	}
}

func TestSendReportsFallbackPhase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stream":
			http.Error(w, "no streaming here", http.StatusNotFound)
		case "/query":
			w.Write([]byte(`{"answer":"ok"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var phases []State
	c.SetPhaseHook(func(s State) { phases = append(phases, s) })

	var updates []update
	out := c.Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateFallbackDone {
		t.Fatalf("State = %v, want StateFallbackDone", out.State)
	}
	if len(phases) != 1 || phases[0] != StateFallbackRequest {
		t.Errorf("phases = %v, want exactly [fallback-request]", phases)
	}
}

func TestSendCleanStreamSkipsPhaseHook(t *testing.T) {
	srv := httptest.NewServer(streamHandler(`{"token":"hi"}`, `{"done":true}`))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var phases []State
	c.SetPhaseHook(func(s State) { phases = append(phases, s) })

	var updates []update
	c.Send(context.Background(), "q", collectUpdates(&updates))

	if len(phases) != 0 {
		t.Errorf("phases = %v, want none on a clean stream", phases)
	}
}

func TestSendBothChannelsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var updates []update
	out := newTestClient(srv.URL).Send(context.Background(), "q", collectUpdates(&updates))

	if out.State != StateFallbackFailed {
		t.Fatalf("State = %v, want StateFallbackFailed", out.State)
	}
	if out.Content != FallbackFailedText {
		t.Errorf("Content = %q, want %q", out.Content, FallbackFailedText)
	}
	if out.Err == nil {
		t.Error("Err = nil, want the fallback failure")
	}

	// Exactly one terminal update, streaming=false.
	if len(updates) != 1 || updates[0].streaming {
		t.Errorf("updates = %v, want a single terminal update", updates)
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckHealthHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.Write([]byte(`{"status":"healthy","llm_available":true,"sse_enabled":true}`))
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if !info.Usable() {
		t.Error("healthy server reported as not usable")
	}
	if info.LLMAvailable == nil || !*info.LLMAvailable {
		t.Error("LLMAvailable not decoded")
	}
}

func TestCheckHealthDegradedIsUsable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"degraded","llm_available":false}`))
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if !info.Usable() {
		t.Error("degraded server must remain usable")
	}
}

func TestCheckHealthBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).CheckHealth(context.Background()); err == nil {
		t.Error("CheckHealth() on 503 should return an error")
	}
}

func TestCheckHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := newTestClient(srv.URL).CheckHealth(context.Background())
	if err == nil {
		t.Fatal("CheckHealth() against a closed server should fail")
	}
	if !IsUnreachable(err) {
		t.Errorf("error = %v, want unreachable classification", err)
	}
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestQueryPrefersAnswerField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"a","response":"r"}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got := resp.Text(); got != "a" {
		t.Errorf("Text() = %q, want %q", got, "a")
	}
}

func TestQueryEmptyResponseText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got := resp.Text(); got != NoResponseText {
		t.Errorf("Text() = %q, want %q", got, NoResponseText)
	}
}

func TestSetBaseURLAffectsNextCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := newTestClient("http://127.0.0.1:1")
	c.SetBaseURL(srv.URL + "/")

	if got := c.BaseURL(); got != srv.URL {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed %q", got, srv.URL)
	}
	if _, err := c.CheckHealth(context.Background()); err != nil {
		t.Errorf("CheckHealth() after SetBaseURL error = %v", err)
	}
}
