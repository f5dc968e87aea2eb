// pattern: Imperative Shell
package instance

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

// Discover finds a running daemon for the data directory and returns its
// base URL. The lock file is the liveness signal: if we can take the lock
// ourselves, nobody is serving. The port file alone is not trusted, a
// crashed daemon can leave one behind, so the address is health-checked
// before it is returned.
func Discover(dataDir string) (string, error) {
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return "", fmt.Errorf("check instance lock: %w", err)
	}
	if ok {
		_ = fl.Unlock()
		return "", fmt.Errorf("no running deskmux instance found (start deskmux first)")
	}

	data, err := os.ReadFile(filepath.Join(dataDir, portFileName))
	if err != nil {
		return "", fmt.Errorf("deskmux instance detected but port file missing: %w", err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("deskmux port file is empty")
	}

	baseURL := "http://" + addr
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return "", fmt.Errorf("deskmux instance not responding: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deskmux health check failed (status %d)", resp.StatusCode)
	}
	return baseURL, nil
}
