//go:build integration

package integration

// Test environment setup and server lifecycle management.
//
// The integration tests start walletpass-server in-process on a free port with a freshly generated
// development signing chain. The signer backend is openssl when the binary is on PATH (so the
// subprocess path is exercised) and the in-process PKCS#7 signer otherwise.
//
// By default the server logs are not included in the test output, you can enable them with:
//
//	ENABLE_SERVER_LOGS=true go test -tags=integration -v ./test/integration

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/digital-business-cards/walletpass/internal/config"
	"github.com/digital-business-cards/walletpass/internal/crypto"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/server"
)

// testEnv provides access to the running server for integration tests
type testEnv struct {
	baseURL     string
	cfg         *config.ServerEnvironment
	roots       *x509.CertPool
	stagingRoot string
	shutdown    func()
}

// startInProcessServer starts walletpass-server in-process and returns its base URL and a shutdown function
func startInProcessServer(t *testing.T) *testEnv {
	t.Helper()

	testEnv := &testEnv{}

	certDir := t.TempDir()
	chain, err := crypto.GenerateDevelopmentChain(certDir, crypto.DevelopmentChainOptions{
		PassTypeIdentifier: "pass.com.example.integration",
		TeamIdentifier:     "TEAMID1234",
		KeyPassphrase:      "integration",
	})
	if err != nil {
		t.Fatalf("Failed to generate signing chain: %v", err)
	}

	testEnv.roots = x509.NewCertPool()
	testEnv.roots.AddCert(chain.Root)
	testEnv.stagingRoot = filepath.Join(t.TempDir(), "staging")
	if err := os.MkdirAll(testEnv.stagingRoot, 0700); err != nil {
		t.Fatalf("Failed to create staging root: %v", err)
	}

	backend := config.SignerBackendNative
	if _, err := exec.LookPath("openssl"); err == nil {
		backend = config.SignerBackendOpenSSL
	}
	t.Logf("signer backend: %s", backend)

	port := findFreePort(t)

	// Set environment variables before calling NewServerConfig
	testEnvVars := map[string]string{
		"HOST":                  "localhost",
		"PORT":                  fmt.Sprintf("%d", port),
		"ENVIRONMENT":           "test",
		"LOG_LEVEL":             "debug",
		"RATE_LIMIT_RPS":        "0",
		"PASS_TYPE_IDENTIFIER":  "pass.com.example.integration",
		"TEAM_IDENTIFIER":       "TEAMID1234",
		"WWDR_CERT_PATH":        chain.WWDRCertPath,
		"SIGNER_CERT_PATH":      chain.SignerCertPath,
		"SIGNER_KEY_PATH":       chain.SignerKeyPath,
		"SIGNER_KEY_PASSPHRASE": "integration",
		"SIGNER_BACKEND":        backend,
		"STAGING_DIR":           testEnv.stagingRoot,
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	cfg, err := config.NewServerConfig()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("ENABLE_SERVER_LOGS") == "true" {
		appLogger = logger.InitLogger(logger.ParseLogLevel("debug"), "test")
	}

	serverInstance := server.NewServer(cfg, cfg.NewSigner(), appLogger)

	serverCtx, serverCancel := context.WithCancel(context.Background())

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := serverInstance.Start(serverCtx); err != nil {
			serverDone <- err
		}
	}()

	testEnv.shutdown = func() {
		t.Log("Stopping server...")
		serverCancel()

		select {
		case err := <-serverDone:
			if err != nil {
				t.Logf("❌ Server shutdown with error: %v", err)
			} else {
				t.Log("✅ Server shut down gracefully")
			}
		case <-time.After(5 * time.Second):
			t.Log("⚠️ Server shutdown timeout")
		}
	}

	testEnv.baseURL = fmt.Sprintf("http://localhost:%d", port)
	testEnv.cfg = cfg

	if !waitForServer(t, testEnv.baseURL+"/health", 30*time.Second) {
		t.Fatal("Server failed to start within timeout")
	}

	t.Log("✅ Server started")
	return testEnv
}

func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	return addr.Port
}

func waitForServer(t *testing.T, url string, timeout time.Duration) bool {
	t.Helper()

	client := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
