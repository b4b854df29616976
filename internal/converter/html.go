package converter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
	"github.com/spf13/afero"
)

// HTMLTextConverter extracts readable text from HTML files using go-readability,
// falling back to the full body text for pages readability cannot score
type HTMLTextConverter struct {
	fs afero.Fs
}

// NewHTMLTextConverter creates an html to txt converter
func NewHTMLTextConverter(fsys afero.Fs) *HTMLTextConverter {
	return &HTMLTextConverter{fs: fsys}
}

func (c *HTMLTextConverter) Name() string { return "go-readability" }

func (c *HTMLTextConverter) Available() error { return nil }

func (c *HTMLTextConverter) Convert(_ context.Context, source, dest string) error {
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	content, err := htmlText(data, &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)})
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to extract text from HTML"}
	}
	return writeOutput(c.fs, dest, []byte(content))
}

func htmlText(data []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil && article.Node != nil {
		var buf bytes.Buffer
		if err := article.RenderText(&buf); err == nil {
			if content := strings.TrimSpace(buf.String()); content != "" {
				return content + "\n", nil
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var lines []string
	for _, line := range strings.Split(body.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n") + "\n", nil
}

var errBrowserClosed = errors.New("browser already closed")

// BrowserPDFConverter prints HTML to PDF with headless Chromium driven by playwright.
// The browser starts on first use and lives until Close.
type BrowserPDFConverter struct {
	fs     afero.Fs
	logger *slog.Logger

	once    sync.Once
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	err     error
}

// NewBrowserPDFConverter creates an html to pdf converter
func NewBrowserPDFConverter(fsys afero.Fs, logger *slog.Logger) *BrowserPDFConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserPDFConverter{fs: fsys, logger: logger}
}

func (c *BrowserPDFConverter) Name() string { return "playwright chromium" }

// Hint names what to install when the browser cannot start
func (c *BrowserPDFConverter) Hint() string {
	return "Install the playwright driver and Chromium: go run github.com/playwright-community/playwright-go/cmd/playwright install --with-deps chromium"
}

// Available starts playwright and Chromium once and reports whether that worked
func (c *BrowserPDFConverter) Available() error {
	c.once.Do(c.start)
	return c.err
}

func (c *BrowserPDFConverter) start() {
	pw, err := playwright.Run()
	if err != nil {
		c.err = &MissingDependencyError{Name: "playwright driver", Err: err}
		return
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			c.logger.Debug("error stopping playwright", "error", stopErr)
		}
		c.err = &MissingDependencyError{Name: "chromium browser", Err: err}
		return
	}

	c.pw = pw
	c.browser = browser
}

func (c *BrowserPDFConverter) Convert(ctx context.Context, source, dest string) error {
	if err := c.Available(); err != nil {
		return err
	}
	data, err := readSource(c.fs, source)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.browser == nil {
		c.mu.Unlock()
		return &MissingDependencyError{Name: "chromium browser", Err: errBrowserClosed}
	}
	page, err := c.browser.NewPage()
	c.mu.Unlock()
	if err != nil {
		return &ConversionError{OriginalError: err, Hint: "failed to create new page"}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			c.logger.DebugContext(ctx, "error closing page", "error", closeErr)
		}
	}()

	if err := page.SetContent(string(data), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to load HTML into browser"}
	}

	pdf, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return &ConversionError{OriginalError: err, Path: source, Hint: "failed to print page to PDF"}
	}
	return writeOutput(c.fs, dest, pdf)
}

// Close shuts down the browser and the playwright driver if they were started
func (c *BrowserPDFConverter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			firstErr = err
		}
		c.browser = nil
	}
	if c.pw != nil {
		if err := c.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.pw = nil
	}
	return firstErr
}
