package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// DesktopUA is the fixed desktop-browser User-Agent sent on every fetch.
const DesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// acceptLanguage prefers Dutch; most retailers served by this system localize
// prices and availability per Accept-Language.
const acceptLanguage = "nl-NL,nl;q=0.9,en-US;q=0.8,en;q=0.7"

// maxBody caps response body reads at 10 MB.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Lock ALPN to http/1.1 so the server never negotiates HTTP/2, which
	// Go's http.Transport cannot speak over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewTransport returns an http.Transport that presents a Chrome TLS
// fingerprint on HTTPS connections. Plain HTTP connections use the standard
// dialer.
func NewTransport() *http.Transport {
	return &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
}

// NewClient returns an http.Client with the Chrome-fingerprint transport and
// a redirect cap of 10.
func NewClient() *http.Client {
	return &http.Client{
		Transport: NewTransport(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// retryableStatusError marks an HTTP status that should trigger backoff.
type retryableStatusError struct {
	status int
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("fetcher: retryable status %d", e.status)
}

// Fetcher retrieves raw page HTML with retry and exponential backoff on
// transient failures. It exists for the AI fallback path only; the primary
// extractor performs its own single fetch.
type Fetcher struct {
	client      *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// New creates a Fetcher. maxRetries is the number of additional attempts
// after the first; backoffBase is the delay before the first retry, doubling
// per attempt.
func New(maxRetries int, backoffBase time.Duration) *Fetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoffBase <= 0 {
		backoffBase = 500 * time.Millisecond
	}
	return &Fetcher{
		client:      NewClient(),
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
	}
}

// FetchHTML GETs the URL and returns the body along with the number of
// retries that were needed.
//
// Only 429 and 503 are treated as retryable failures; every other status,
// including 403/404/500, counts as a successful fetch at the HTTP layer and
// its body is returned (an error page is still useful AI input). Network
// errors are retried like 429/503. After exhausting retries the last error
// is returned; callers on the fallback path treat that as "HTML unavailable"
// and continue with an empty string.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (string, int, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoffBase << (attempt - 1)
			slog.Debug("fetcher: backing off", "url", url, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return "", attempt - 1, ctx.Err()
			case <-time.After(delay):
			}
		}

		html, err := f.fetchOnce(ctx, url)
		if err == nil {
			return html, attempt, nil
		}
		lastErr = err
	}

	return "", f.maxRetries, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetcher: build request: %w", err)
	}
	req.Header.Set("User-Agent", DesktopUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetcher: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return "", &retryableStatusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("fetcher: read body: %w", err)
	}
	return string(body), nil
}
