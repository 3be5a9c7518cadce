// Package connectivity probes whether the assistant can reach the
// internet and its model provider, deciding online versus offline mode.
package connectivity

import (
	"context"
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// Checker probes network reachability. The zero value is not usable;
// call NewChecker.
type Checker struct {
	dialAddr string
	probeURL string
	timeout  time.Duration
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	client   *http.Client
}

// NewChecker creates a checker with the standard probes: a TCP dial to a
// public DNS resolver, then an HTTP GET fallback for networks that block
// raw outbound dials.
func NewChecker() *Checker {
	d := &net.Dialer{}
	return &Checker{
		dialAddr: "8.8.8.8:53",
		probeURL: "https://www.google.com",
		timeout:  defaultTimeout,
		dial:     d.DialContext,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// Online reports whether the internet is reachable.
func (c *Checker) Online(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if conn, err := c.dial(dialCtx, "tcp", c.dialAddr); err == nil {
		conn.Close()
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// APIReachable reports whether the provider endpoint answers at all.
// Auth failures still count as reachable: the host is up and talking.
func (c *Checker) APIReachable(ctx context.Context, apiURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
