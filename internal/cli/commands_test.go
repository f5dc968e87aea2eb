// pattern: Imperative Shell
package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	defer func() { os.Stdout = oldStdout }()

	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	buf := &bytes.Buffer{}
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestBuildApp_VersionCommand_PrintsVersion(t *testing.T) {
	app := BuildApp("1.2.3", "")

	versionCmd, ok := app.commands["version"]
	if !ok {
		t.Fatal("version command not registered")
	}

	output := captureStdout(t, func() {
		if err := versionCmd.Run(nil); err != nil {
			t.Errorf("version command returned error: %v", err)
		}
	})

	if output != "1.2.3\n" {
		t.Errorf("version command output = %q, want \"1.2.3\\n\"", output)
	}
}

func TestBuildApp_NoArgs_ReturnsTrueForTUI(t *testing.T) {
	app := BuildApp("1.0.0", "")
	result := app.Execute(nil)
	if !result {
		t.Errorf("Execute(nil) returned %v, want true", result)
	}
}

func TestBuildApp_GroupsRegistered(t *testing.T) {
	app := BuildApp("1.0.0", "")
	for _, name := range []string{"tab", "pane"} {
		if _, ok := app.groups[name]; !ok {
			t.Errorf("%s group not registered", name)
		}
	}
	for _, name := range []string{"undo", "flush", "doctor", "cleanup", "version"} {
		if _, ok := app.commands[name]; !ok {
			t.Errorf("%s command not registered", name)
		}
	}
}

func TestTabList_DelegatesToInstance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tabs":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[{"id":"t1","name":"main","active":true,"pane_count":2,"active_arrangement":"default"}]`))
		case "/api/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	mockDiscoverer := func(dataDir string) (string, error) {
		return server.URL, nil
	}

	output := captureStdout(t, func() {
		if err := runTabList("", mockDiscoverer, nil); err != nil {
			t.Errorf("tab list returned error: %v", err)
		}
	})

	if !strings.Contains(output, "main") || !strings.Contains(output, "t1") {
		t.Errorf("tab list output missing tab row, got: %s", output)
	}

	jsonOut := captureStdout(t, func() {
		_ = runTabList("", mockDiscoverer, []string{"--json"})
	})
	if !strings.Contains(jsonOut, `"id":"t1"`) {
		t.Errorf("tab list --json should pass raw JSON through, got: %s", jsonOut)
	}
}

func TestPaneOutput_ParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPane string
		wantN    int
		wantErr  bool
	}{
		{"pane only", []string{"p1"}, "p1", 0, false},
		{"pane with lines", []string{"p1", "--lines", "40"}, "p1", 40, false},
		{"lines first", []string{"--lines", "10", "p1"}, "p1", 10, false},
		{"missing pane", nil, "", 0, true},
		{"missing lines value", []string{"p1", "--lines"}, "", 0, true},
		{"bad lines value", []string{"p1", "--lines", "soon"}, "", 0, true},
		{"extra arg", []string{"p1", "p2"}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pane, n, err := parseOutputArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (pane != tt.wantPane || n != tt.wantN) {
				t.Errorf("got (%q, %d), want (%q, %d)", pane, n, tt.wantPane, tt.wantN)
			}
		})
	}
}

func TestDoctor_ReportsFiles(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "workspace.json"), []byte(`{"version":2}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "sessions.json"), []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	if err := runDoctorCommand(tmpDir, buf); err != nil {
		t.Fatalf("doctor returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "schema v2") {
		t.Errorf("doctor should report workspace schema version, got: %s", output)
	}
	if !strings.Contains(output, "INVALID JSON") {
		t.Errorf("doctor should flag invalid legacy document, got: %s", output)
	}
	if !strings.Contains(output, "not running") {
		t.Errorf("doctor should report no running instance, got: %s", output)
	}
}

func TestBuildApp_CleanupCommand_Registered(t *testing.T) {
	tmpDir := t.TempDir()
	app := BuildApp("1.0.0", tmpDir)

	cleanupCmd, ok := app.commands["cleanup"]
	if !ok {
		t.Fatal("cleanup command not registered")
	}
	if cleanupCmd.Summary == "" || cleanupCmd.Usage == "" {
		t.Error("cleanup command should carry summary and usage")
	}

	output := captureStdout(t, func() {
		// Cleanup succeeds when no instance is running in the temp dir.
		if err := cleanupCmd.Run([]string{}); err != nil {
			t.Errorf("cleanup command returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Cleaned up") {
		t.Errorf("expected cleanup message in output, got: %s", output)
	}
}
