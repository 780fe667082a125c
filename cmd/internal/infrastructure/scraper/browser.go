package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const navigationTimeout = 30 * time.Second

type BrowserOptions struct {
	Headless   bool
	WindowSize string
	UserAgent  string

	// RemoteURL is the DevTools websocket of an already running Chrome.
	// When empty a local Chrome is launched.
	RemoteURL string
}

// Browser owns one Chrome instance and the single tab scrapers drive.
type Browser struct {
	opts     BrowserOptions
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
}

func NewBrowser(ctx context.Context, opts BrowserOptions) (*Browser, error) {
	wsURL := opts.RemoteURL
	var l *launcher.Launcher

	if wsURL == "" {
		l = launcher.New().
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled").
			Set("disable-dev-shm-usage").
			Set("disable-gpu")

		if opts.WindowSize != "" {
			l = l.Set("window-size", opts.WindowSize)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Cleanup()
		}
		return nil, fmt.Errorf("connect chrome: %w", err)
	}

	return &Browser{
		opts:     opts,
		browser:  b,
		launcher: l,
	}, nil
}

// Page returns the shared stealth tab, creating it on first use.
func (b *Browser) Page() (*rod.Page, error) {
	if b.page != nil {
		return b.page, nil
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	if b.opts.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent})
		if err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	b.page = page
	return page, nil
}

// Navigate loads url in the shared tab and waits for the load event.
func (b *Browser) Navigate(ctx context.Context, url string) (*rod.Page, error) {
	page, err := b.Page()
	if err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, navigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	return page.Context(ctx), nil
}

func (b *Browser) Close() error {
	if b.page != nil {
		_ = b.page.Close()
		b.page = nil
	}

	err := b.browser.Close()
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
	return err
}

// waitFor blocks until selector shows up on page or timeout elapses.
func waitFor(page *rod.Page, selector string, timeout time.Duration) error {
	_, err := page.Timeout(timeout).Element(selector)
	return err
}

// textOf returns the trimmed text of the first match of selector under el.
func textOf(el *rod.Element, selector string) (string, bool) {
	found, err := el.Elements(selector)
	if err != nil || len(found) == 0 {
		return "", false
	}
	return elementText(found[0]), true
}

func elementText(el *rod.Element) string {
	if html, err := el.HTML(); err == nil {
		return CleanText(html)
	}
	return ""
}

func attrOf(el *rod.Element, selector, name string) (string, bool) {
	found, err := el.Elements(selector)
	if err != nil || len(found) == 0 {
		return "", false
	}
	v, err := found[0].Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, *v != ""
}

func click(ctx context.Context, el *rod.Element) error {
	return Retry(ctx, clickAttempts, clickBackoff, func() error {
		return el.Click(proto.InputMouseButtonLeft, 1)
	})
}
