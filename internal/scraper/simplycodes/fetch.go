package simplycodes

import (
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"CouponScraper/internal/metrics"
	"CouponScraper/internal/scraper"
	"CouponScraper/pkg/config"
)

// userAgents is the rotating pool of realistic client identities. The
// session starts on the first entry and moves on after an anti-bot block.
var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// extraHeaders is applied to every navigation, key/value pairs.
var extraHeaders = []string{
	"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language", "en-US,en;q=0.5",
	"DNT", "1",
	"Upgrade-Insecure-Requests", "1",
	"Sec-Fetch-Dest", "document",
	"Sec-Fetch-Mode", "navigate",
	"Sec-Fetch-Site", "none",
	"Cache-Control", "max-age=0",
}

// stealthInit runs before any target script and masks the properties the
// site inspects to spot automation.
const stealthInit = `
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined,
	});
	Object.defineProperty(navigator, 'plugins', {
		get: () => [1, 2, 3, 4, 5],
	});
	Object.defineProperty(navigator, 'languages', {
		get: () => ['en-US', 'en'],
	});
`

// Session owns the browser context for one run. It is the only state shared
// across the sequential fetches and implements scraper.Fetcher.
type Session struct {
	browser *rod.Browser
	timeout time.Duration
	metrics *metrics.Metrics
	uaIndex int
}

// NewSession launches a Chromium with the anti-detection flags and connects
// to it. The process is torn down by Close.
func NewSession(cfg config.ScraperConfig, m *metrics.Metrics) *Session {
	u := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		MustLaunch()
	browser := rod.New().ControlURL(u).MustConnect()

	return &Session{
		browser: browser,
		timeout: cfg.Timeout(),
		metrics: m,
	}
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.browser.MustClose()
}

// RotateIdentity moves to the next user agent. The next Fetch opens a fresh
// stealth page, so the new identity applies before any navigation.
func (s *Session) RotateIdentity() {
	s.uaIndex = (s.uaIndex + 1) % len(userAgents)
	log.Printf("Rotated client identity to user agent #%d", s.uaIndex+1)
}

func (s *Session) userAgent() string {
	return userAgents[s.uaIndex]
}

// Fetch navigates to rawURL on a fresh stealth page and returns the
// rendered HTML, classifying every failure into the typed errors the retry
// controller understands.
func (s *Session) Fetch(rawURL string) (string, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || parsed.Host == "" {
		return "", s.fail("fatal", scraper.FatalError{Err: fmt.Errorf("malformed url %q", rawURL)})
	}

	start := time.Now()

	page, err := stealth.Page(s.browser)
	if err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("open stealth page: %w", err)})
	}
	defer page.MustClose()

	// Identity and init scripts must be in place before the target's own
	// scripts run.
	if _, err := page.EvalOnNewDocument(stealthInit); err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("install init script: %w", err)})
	}
	if err := (proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent()}).Call(page); err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("set user agent: %w", err)})
	}
	if _, err := page.SetExtraHeaders(extraHeaders); err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("set headers: %w", err)})
	}

	if err := page.Timeout(s.timeout).Navigate(rawURL); err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("navigate %s: %w", rawURL, err)})
	}
	if err := page.Timeout(s.timeout).WaitLoad(); err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("wait load %s: %w", rawURL, err)})
	}
	// Let late content settle; a still-moving page is not an error.
	_ = page.Timeout(10 * time.Second).WaitStable(500 * time.Millisecond)

	humanDelay()

	info, err := page.Info()
	if err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("page info %s: %w", rawURL, err)})
	}
	if reason, blocked := blockedTitle(info.Title); blocked {
		return "", s.fail("blocked", scraper.BlockedError{URL: rawURL, Err: fmt.Errorf("%s (title: %q)", reason, info.Title)})
	}

	html, err := page.HTML()
	if err != nil {
		return "", s.fail("transient", scraper.TransientError{Err: fmt.Errorf("read html %s: %w", rawURL, err)})
	}

	if s.metrics != nil {
		s.metrics.IncFetch("success")
		s.metrics.ObserveFetchDuration(time.Since(start))
	}
	return html, nil
}

func (s *Session) fail(outcome string, err error) error {
	if s.metrics != nil {
		s.metrics.IncFetch(outcome)
	}
	return err
}

// blockedTitle classifies the anti-bot signals the site renders into the
// document title.
func blockedTitle(title string) (string, bool) {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "403"):
		return "403 response", true
	case strings.Contains(lower, "forbidden"):
		return "forbidden page", true
	case strings.Contains(lower, "robot check"):
		return "robot check", true
	case strings.Contains(lower, "captcha"):
		return "captcha challenge", true
	}
	return "", false
}

// humanDelay waits a short random interval after navigation so request
// timing does not look scripted.
func humanDelay() {
	time.Sleep(time.Duration(500+rand.Intn(1500)) * time.Millisecond)
}
