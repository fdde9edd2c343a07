// Package httpc builds HTTP clients with explicit timeouts.
// Never use http.DefaultClient: it has no timeout.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Dial and pool settings shared by every client.
const (
	ConnectTimeout  = 2 * time.Second
	KeepAlive       = 30 * time.Second
	IdleConnTimeout = 90 * time.Second
	MaxIdlePerHost  = 4
)

// NewClient returns a client whose whole request, including reading the
// body, is bounded by timeout. Connection setup is additionally bounded by
// ConnectTimeout so a dead endpoint fails fast inside the frame loop.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(),
	}
}

// NewTransport returns a pooled transport with bounded dial and TLS times.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   ConnectTimeout,
			KeepAlive: KeepAlive,
		}).DialContext,
		MaxIdleConns:          MaxIdlePerHost * 4,
		MaxIdleConnsPerHost:   MaxIdlePerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   ConnectTimeout,
		ExpectContinueTimeout: time.Second,
	}
}
