// pattern: Imperative Shell
package instance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "deskmux.lock"
	portFileName = "deskmux.port"
)

// Lock enforces a single deskmux instance per data directory. The returned
// handle stays held for the life of the process; release it with Cleanup.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another deskmux instance is already running")
	}
	return fl, nil
}

// WritePort publishes the daemon's listen address for CLI discovery.
func WritePort(dataDir, addr string) error {
	return os.WriteFile(filepath.Join(dataDir, portFileName), []byte(addr), 0o600)
}

// Cleanup removes the port file and releases the lock. Safe with a nil
// handle so it can sit in a defer next to Lock.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, portFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}
