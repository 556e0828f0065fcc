package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(maxRetries int) *Fetcher {
	f := New(maxRetries, time.Millisecond)
	f.client = &http.Client{}
	return f
}

func TestFetchHTML_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DesktopUA {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		if got := r.Header.Get("Accept-Language"); got != acceptLanguage {
			t.Errorf("Accept-Language = %q", got)
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	html, retries, err := testFetcher(2).FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if html != "<html>ok</html>" {
		t.Errorf("html = %q", html)
	}
	if retries != 0 {
		t.Errorf("retries = %d, want 0", retries)
	}
}

func TestFetchHTML_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	html, retries, err := testFetcher(2).FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if html != "recovered" {
		t.Errorf("html = %q", html)
	}
	if retries != 2 {
		t.Errorf("retries = %d, want 2", retries)
	}
}

func TestFetchHTML_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := testFetcher(2).FetchHTML(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestFetchHTML_NonRetryableStatusReturnsBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	html, retries, err := testFetcher(2).FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if html != "<html>blocked</html>" {
		t.Errorf("html = %q", html)
	}
	if retries != 0 {
		t.Errorf("retries = %d, want 0", retries)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestFetchHTML_ContextCancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(5, time.Minute)
	f.client = &http.Client{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := f.FetchHTML(ctx, srv.URL)
	if err != context.DeadlineExceeded {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"<html><head><title>  Shoe Store </title></head></html>", "Shoe Store"},
		{"<html><head></head><body>x</body></html>", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractTitle(tt.doc); got != tt.want {
			t.Errorf("ExtractTitle(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestLooksLikeShell(t *testing.T) {
	shell := `<html><body><div id="root"></div><script src="/app.js"></script></body></html>`
	if !LooksLikeShell(shell) {
		t.Error("SPA shell not detected")
	}

	full := `<html><body><div id="root">` +
		`<h1>Leather boots</h1><p>` + longText(300) + `</p></div></body></html>`
	if LooksLikeShell(full) {
		t.Error("content-rich page misclassified as shell")
	}

	static := `<html><body><h1>x</h1></body></html>`
	if LooksLikeShell(static) {
		t.Error("static page without framework markers misclassified")
	}
}

func longText(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
