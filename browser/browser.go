package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/shelfscan/shelfscan/config"
)

// Renderer manages a headless browser and a reusable page pool for rendering
// client-side product pages. It is safe for concurrent use.
type Renderer struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	cfg         config.BrowserConfig
	activePages atomic.Int32
}

// New launches a headless browser and initialises the page pool.
func New(cfg config.BrowserConfig) (*Renderer, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch failed: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect failed: %w", err)
	}

	return &Renderer{
		browser:  b,
		pagePool: rod.NewPagePool(cfg.MaxPages),
		cfg:      cfg,
	}, nil
}

// ActivePages returns the number of pages currently rendering.
func (r *Renderer) ActivePages() int {
	return int(r.activePages.Load())
}

// RenderHTML navigates a pooled page to the URL, waits for the DOM to settle
// and returns the rendered document.
//
// Stealth JS and extra headers are installed before navigation; they only take
// effect for navigations that happen after installation.
func (r *Renderer) RenderHTML(ctx context.Context, pageURL string) (string, error) {
	r.activePages.Add(1)
	defer r.activePages.Add(-1)

	page, err := r.pagePool.Get(func() (*rod.Page, error) {
		return r.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return "", fmt.Errorf("browser: acquire page: %w", err)
	}

	// Park the tab on about:blank before returning it so the pool never
	// holds a live product DOM. Uses the original page reference so cleanup
	// works even after the request context expires.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("browser: cleanup navigation failed", "error", navErr)
		}
		r.pagePool.Put(page)
	}()

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("browser: stealth injection failed, proceeding without", "error", evalErr)
	}

	headers := proto.NetworkHeaders{
		"Accept-Language": gson.New("nl-NL,nl;q=0.9,en-US;q=0.8,en;q=0.7"),
	}
	if u, parseErr := url.Parse(pageURL); parseErr == nil {
		headers["Referer"] = gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()))
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(page)

	p := page.Context(ctx)

	if err := p.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("browser: navigation failed: %w", err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("browser: DOM did not converge, using current state", "error", err)
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("browser: read document: %w", err)
	}
	return html, nil
}

// Close drains the page pool and kills the browser process. Call on graceful
// shutdown to prevent zombie Chrome processes.
func (r *Renderer) Close() {
	slog.Info("browser shutting down: draining page pool")
	r.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	r.browser.MustClose()
	slog.Info("browser shutdown complete")
}
