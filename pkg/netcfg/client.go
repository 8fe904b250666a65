// Package netcfg builds the shared HTTP client that the LLM Gateway and
// the Review API's PR webhook collaborator use, so IPv4 preference is
// configured once rather than copied per call site. The Stream Adapters
// do not use this client.
package netcfg

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"
)

// NewHTTPClient returns an *http.Client configured from the environment.
// When PREFER_IPV4 is set (to any non-empty value), outbound dials prefer
// tcp4: multiple external providers used by adapters resolve to IPv6 in
// dual-stack environments that may not route IPv6 from the deployment
// network, so operators need a way to force v4 without touching DNS.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if os.Getenv("PREFER_IPV4") != "" {
		transport.DialContext = preferIPv4DialContext(dialer)
	} else {
		transport.DialContext = dialer.DialContext
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// preferIPv4DialContext wraps a dialer's DialContext to force the "tcp4"
// network regardless of what the caller requested, falling back to the
// dialer's normal behavior for non-"tcp"/"tcp4"/"tcp6" networks.
func preferIPv4DialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		switch network {
		case "tcp", "tcp4", "tcp6":
			return dialer.DialContext(ctx, "tcp4", addr)
		default:
			return dialer.DialContext(ctx, network, addr)
		}
	}
}
