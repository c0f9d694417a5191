package transport

import (
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/nbapredict/internal/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// StatusError is returned when the server answers with a non 2xx status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned error status %d", e.URL, e.StatusCode)
}

// HTMLClient fetches html documents the way a browser would
type HTMLClient struct {
	client    *http.Client
	userAgent string
}

// ClientOptions configures NewHTMLClient
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// CABundle is an optional PEM file appended to the system roots, for intercepting proxies
	CABundle string
}

// NewHTMLClient returns a client with the given per request timeout
func NewHTMLClient(opts ClientOptions) *HTMLClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}
	if opts.CABundle != "" {
		if pem, err := os.ReadFile(opts.CABundle); err != nil {
			logger.Warn("Proceeding without CA bundle", err)
		} else if !rootCAs.AppendCertsFromPEM(pem) {
			logger.Warn("Failed to append CA bundle", opts.CABundle)
		}
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: rootCAs},
			Proxy:           http.ProxyFromEnvironment,
		},
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
	return &HTMLClient{client: client, userAgent: opts.UserAgent}
}

// GetHtml fetches url and returns the decoded body.
// Non 2xx responses produce a *StatusError
func (c *HTMLClient) GetHtml(htmlUrl string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, htmlUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Add headers to make the request look more like a browser
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Referer", "http://www.google.com/")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch html: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: htmlUrl, StatusCode: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// decodeBody wraps the body in a reader matching its Content-Encoding
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	contentEncoding := resp.Header.Get("Content-Encoding")
	switch contentEncoding {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		reader, err := NewGzipReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return reader, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return NewDeflateReader(resp.Body)
	case "br":
		logger.Debug("Handling brotli compressed content")
		return NewBrotliReader(resp.Body)
	case "", "identity":
	default:
		logger.Warn("Unknown content encoding:", contentEncoding)
	}
	return io.NopCloser(resp.Body), nil
}

// NewGzipReader creates a gzip reader from the provided io.ReadCloser
func NewGzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// NewDeflateReader creates a deflate reader from the provided io.ReadCloser
func NewDeflateReader(r io.ReadCloser) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// NewBrotliReader creates a brotli reader from the provided io.ReadCloser
func NewBrotliReader(r io.ReadCloser) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
