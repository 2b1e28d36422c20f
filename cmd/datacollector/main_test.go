package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// freePort asks the kernel for an unused loopback port.
func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DATACOLLECTOR_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config failure", err)
	}
}

// TestRun_MissingJWTSecret verifies auth cannot be enabled without a secret.
func TestRun_MissingJWTSecret(t *testing.T) {
	t.Setenv("DATACOLLECTOR_JWT_SECRET", "")
	t.Setenv("DATACOLLECTOR_CONFIG", writeConfig(t, `
database:
  path: "`+filepath.Join(t.TempDir(), "people.db")+`"
security:
  auth:
    enabled: true
    jwt_secret: ""
`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail without a JWT secret")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error = %v, want jwt_secret message", err)
	}
}

// TestRun_StartsAndStops boots the whole service on a temp database,
// exercises the API over HTTP and shuts down on context cancellation.
func TestRun_StartsAndStops(t *testing.T) {
	port := freePort(t)
	dbPath := filepath.Join(t.TempDir(), "data", "people.db")

	t.Setenv("DATACOLLECTOR_CONFIG", writeConfig(t, fmt.Sprintf(`
database:
  path: %q
  wal_mode: true
  busy_timeout: 5
api:
  host: "127.0.0.1"
  port: %d
mqtt:
  enabled: false
influxdb:
  enabled: false
metrics:
  enabled: true
  path: /metrics/prometheus
logging:
  level: error
  format: text
  output: stdout
security:
  auth:
    enabled: false
`, dbPath, port)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitForHealthy(t, base+"/api/v1/health", done)

	resp, err := http.Post(base+"/api/v1/people", "application/json",
		strings.NewReader(`{"full_name":"Ada Lovelace","email":"ada@example.com"}`))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	resp, err = http.Get(base + "/metrics/prometheus")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("prometheus status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() returned error on shutdown: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func waitForHealthy(t *testing.T, url string, done <-chan error) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case err := <-done:
			t.Fatalf("run() exited early: %v", err)
		default:
		}
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("service did not become healthy")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("DATACOLLECTOR_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("DATACOLLECTOR_CONFIG", "/etc/datacollector/config.yaml")
	if got := getConfigPath(); got != "/etc/datacollector/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}
