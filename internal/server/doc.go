// Package server provides the HTTP server for the wallet pass service.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// Routes:
//   - GET/POST/OPTIONS /generateAppleWalletPass (alias /api/passes/apple)
//   - GET /health, /ready, /version, /metrics
//
// middleware is in internal/server/middleware
package server
