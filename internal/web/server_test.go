package web_test

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestHandleHealth(t *testing.T) {
	fx := startTestServer(t)

	resp, err := http.Get(fx.baseURL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body error = %v", err)
	}
	if want := `{"status":"ok"}`; string(body) != want {
		t.Errorf("body = %q, want %q", string(body), want)
	}
}

func TestHandleEvents_ConnectedAndStateEvent(t *testing.T) {
	fx := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", fx.baseURL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading connected event: %v", err)
	}
	if !strings.HasPrefix(line, "event: connected") {
		t.Fatalf("first line = %q, want connected event", line)
	}

	// Mutate the workspace; the SSE stream must carry a state event.
	go func() {
		resp, err := http.Post(fx.baseURL+"/api/tabs", "application/json", strings.NewReader(`{"name":"sse"}`))
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		line, err = reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading event stream: %v", err)
		}
		if strings.HasPrefix(line, "event: state") {
			return
		}
	}
	t.Fatal("no state event observed after mutation")
}
