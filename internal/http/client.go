// Package http configures the shared HTTP transports used for API calls and
// media transfers.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/medialens/medialens/internal/constants"
)

// NewAPIClient creates the HTTP client used for admin and search API calls.
// Proxy settings come from the standard environment variables (HTTP_PROXY,
// HTTPS_PROXY, NO_PROXY).
func NewAPIClient() *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &nethttp.Client{
		Transport: tr,
		// Admin and search calls are small JSON exchanges; cap the whole
		// operation. Transfers get their own client with no timeout.
		Timeout: constants.APIContextTimeout,
	}
}

// NewTransferClient creates an HTTP client tuned for media uploads.
//
// Key features:
//   - Large connection pool for concurrent uploads
//   - Disabled compression (no benefit for already-compressed media)
//   - HTTP/2 support with runtime toggle (DISABLE_HTTP2 env var)
//   - No overall timeout; each upload sets its own via context
func NewTransferClient() *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          512,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
		DisableCompression:    true,
		ForceAttemptHTTP2:     true,
	}

	// Ensure HTTP/2 is properly configured
	_ = http2.ConfigureTransport(tr)

	// Runtime toggle for HTTP/2 (useful for debugging or compatibility issues)
	// Set DISABLE_HTTP2=true environment variable to force HTTP/1.1
	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	// Proxies often mishandle HTTP/2 multiplexing mid-transfer, so fall back
	// to HTTP/1.1 when one is configured. FORCE_HTTP2=true overrides.
	proxyActive := os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
		os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	if proxyActive && os.Getenv("FORCE_HTTP2") != "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	return &nethttp.Client{
		Transport: tr,
		Timeout:   0,
	}
}
