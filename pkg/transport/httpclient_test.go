package transport

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<html><body><table id=\"games\"></table></body></html>"

func compress(t *testing.T, encoding string) []byte {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "deflate":
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		w = fw
	case "br":
		w = brotli.NewWriter(&buf)
	default:
		return []byte(page)
	}
	_, err := w.Write([]byte(page))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestGetHtmlDecodesContentEncoding(t *testing.T) {
	for _, encoding := range []string{"", "identity", "gzip", "deflate", "br"} {
		t.Run("encoding "+encoding, func(t *testing.T) {
			body := compress(t, encoding)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
				assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			client := NewHTMLClient(ClientOptions{Timeout: time.Second, UserAgent: "test-agent"})
			got, err := client.GetHtml(srv.URL)
			require.NoError(t, err)
			assert.Equal(t, page, string(got))
		})
	}
}

func TestGetHtmlStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTMLClient(ClientOptions{}).GetHtml(srv.URL + "/teams/MIL/2021.html")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "/teams/MIL/2021.html")
}

func TestGetHtmlUnknownEncodingPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewHTMLClient(ClientOptions{}).GetHtml(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, page, string(got))
}

func TestGetHtmlCorruptGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write([]byte("not gzip at all"))
	}))
	defer srv.Close()

	_, err := NewHTMLClient(ClientOptions{}).GetHtml(srv.URL)
	assert.Error(t, err)
}

func TestGetHtmlTrustsCABundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	_, err := NewHTMLClient(ClientOptions{Timeout: time.Second}).GetHtml(srv.URL)
	require.Error(t, err, "self signed certificate is not trusted by default")

	bundle := filepath.Join(t.TempDir(), "proxy.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, certPEM, 0o600))

	got, err := NewHTMLClient(ClientOptions{Timeout: time.Second, CABundle: bundle}).GetHtml(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, page, string(got))
}
