package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewHTTPClient builds the HTTP client used for backend calls. timeout
// bounds a whole request; zero means no bound. When enableHTTP2 is set,
// HTTP/2 is negotiated over TLS for https backends.
func NewHTTPClient(timeout time.Duration, enableHTTP2 bool) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	if enableHTTP2 {
		if _, err := http2.ConfigureTransports(transport); err != nil {
			return nil, fmt.Errorf("configure http2: %w", err)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
