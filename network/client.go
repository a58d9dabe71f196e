// Package network provides the shared HTTP client used for telemetry delivery.
package network

import (
	"net/http"
	"time"
)

// Client is shared by every telemetry sink. Per-request deadlines come from the caller's context;
// the client timeout is only a backstop.
var Client = &http.Client{
	Timeout:   30 * time.Second,
	Transport: newTransport(),
}

// newTransport clones the default transport with a small idle pool: telemetry talks to a single host.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 4
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 15 * time.Second
	return t
}
