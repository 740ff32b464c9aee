// Package handlers provides the HTTP handlers: the wallet pass endpoint and the
// infrastructure handlers (health, readiness, version).
package handlers
