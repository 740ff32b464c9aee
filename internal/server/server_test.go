package server

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/digital-business-cards/walletpass/internal/config"
	"github.com/digital-business-cards/walletpass/internal/crypto"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

const cardJSON = `{"name":"John Doe","company":"Acme","cardId":"c1","userId":"u1","publicCardUrl":"https://example.com/card/c1"}`

// newTestServer starts the full HTTP stack with the native signer and a development chain
func newTestServer(t *testing.T) (*httptest.Server, *x509.CertPool) {
	t.Helper()

	dir := t.TempDir()
	chain, err := crypto.GenerateDevelopmentChain(dir, crypto.DevelopmentChainOptions{KeyPassphrase: "pw"})
	if err != nil {
		t.Fatalf("GenerateDevelopmentChain() error = %v", err)
	}

	cfg := &config.ServerEnvironment{
		Environment:         "test",
		RequestTimeout:      30 * time.Second,
		MaxRequestBodyBytes: 4096,
		PassTypeIdentifier:  "pass.com.example.businesscard",
		TeamIdentifier:      "TEAMID1234",
		OrganizationName:    "Digital Business Card",
		PassDescription:     "Digital Business Card",
		PassValidity:        pass.DefaultValidity,
		WWDRCertPath:        chain.WWDRCertPath,
		SignerCertPath:      chain.SignerCertPath,
		SignerKeyPath:       chain.SignerKeyPath,
		SignerKeyPassphrase: "pw",
		SignerBackend:       config.SignerBackendNative,
		SigningTimeout:      10 * time.Second,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(cfg, cfg.NewSigner(), logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	roots := x509.NewCertPool()
	roots.AddCert(chain.Root)
	return ts, roots
}

func TestServerGeneratesVerifiablePass(t *testing.T) {
	ts, roots := newTestServer(t)

	for _, path := range []string{"/generateAppleWalletPass", "/api/passes/apple"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(cardJSON))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.apple.pkpass" {
				t.Errorf("Content-Type = %q", ct)
			}
			if _, err := pass.Verify(body, roots); err != nil {
				t.Errorf("generated pass did not verify: %v", err)
			}
		})
	}
}

func TestServerErrorResponsesCarryRequestID(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/generateAppleWalletPass", "application/json",
		strings.NewReader(`{"name":"John Doe","company":"Acme","userId":"u1","publicCardUrl":"https://example.com/card/c1"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Error     string   `json:"error"`
		Fields    []string `json:"fields"`
		RequestID string   `json:"requestId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if !strings.Contains(body.Error, "cardId") {
		t.Errorf("error %q does not name cardId", body.Error)
	}
	if body.RequestID == "" {
		t.Error("expected requestId in error body")
	}
}

func TestServerRequestBodyLimit(t *testing.T) {
	ts, _ := newTestServer(t)

	big := bytes.Repeat([]byte("x"), 8192)
	resp, err := http.Post(ts.URL+"/generateAppleWalletPass", "application/json", bytes.NewReader(big))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestServerOptions(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{
			name: "CORS preflight",
			headers: map[string]string{
				"Origin":                         "https://cards.example.com",
				"Access-Control-Request-Method":  "POST",
				"Access-Control-Request-Headers": "Content-Type",
			},
		},
		{
			name: "plain OPTIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, ts.URL+"/generateAppleWalletPass", nil)
			if err != nil {
				t.Fatalf("NewRequest() error = %v", err)
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("OPTIONS failed: %v", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}
			if len(body) != 0 {
				t.Errorf("expected empty body, got %q", body)
			}
		})
	}
}

func TestServerOperationalEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		path         string
		wantStatus   int
		bodyContains string
	}{
		{"/health", http.StatusOK, "OK"},
		{"/ready", http.StatusOK, `"status":"ready"`},
		{"/version", http.StatusOK, `"service":"walletpass-server"`},
		{"/metrics", http.StatusOK, "walletpass_passes_generated_total"},
	}

	// generate one pass so the counter has a sample
	resp, err := http.Post(ts.URL+"/generateAppleWalletPass", "application/json", strings.NewReader(cardJSON))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(string(body), tt.bodyContains) {
				t.Errorf("body %q does not contain %q", body, tt.bodyContains)
			}
		})
	}
}
