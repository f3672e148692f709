// Package extract turns raw résumé documents into plain text. Extraction is
// best-effort: any failure degrades to an empty string so the surrounding
// pipeline treats it as "no evidence" rather than an error.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

type Extractor struct {
	baseDir string
	client  *http.Client
	logger  zerolog.Logger
}

// New creates an Extractor. Relative locators resolve against baseDir; remote
// fetches are bounded by timeout.
func New(baseDir string, timeout time.Duration, logger zerolog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		baseDir: baseDir,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Extract resolves a local path or http(s) locator and returns its plain
// text. It never returns an error: missing files, fetch failures, and parse
// failures all yield "".
func (e *Extractor) Extract(ctx context.Context, locator string) string {
	if strings.TrimSpace(locator) == "" {
		return ""
	}

	if isRemote(locator) {
		path, cleanup, err := e.fetch(ctx, locator)
		if err != nil {
			e.logger.Warn().Err(err).Str("locator", locator).Msg("resume fetch failed")
			return ""
		}
		defer cleanup()
		return e.extractFile(path)
	}

	// Stored locators are base-relative with a leading slash. A true
	// absolute path is honored only when it exists as given.
	path := filepath.Join(e.baseDir, strings.TrimLeft(locator, "/\\"))
	if filepath.IsAbs(locator) {
		if _, err := os.Stat(locator); err == nil {
			path = locator
		}
	}
	return e.extractFile(path)
}

// fetch downloads a remote document into a temp file and returns its path
// with a cleanup func. The temp copy is removed whether or not extraction
// succeeds.
func (e *Extractor) fetch(ctx context.Context, url string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch document: status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "resume-*"+remoteExt(url))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil {
			e.logger.Warn().Err(err).Str("path", tmp.Name()).Msg("temp file removal failed")
		}
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), cleanup, nil
}

func (e *Extractor) extractFile(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		e.logger.Warn().Str("path", path).Msg("resume file not found")
		return ""
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path, info.Size())
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warn().Err(err).Str("path", path).Msg("resume read failed")
			return ""
		}
		return string(data)
	default:
		e.logger.Warn().Str("path", path).Msg("unsupported resume format")
		return ""
	}
}

// extractPDF collects text page by page; a page that fails to decode is
// logged and skipped rather than aborting the document.
func (e *Extractor) extractPDF(path string, size int64) string {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("resume open failed")
		return ""
	}
	defer f.Close()

	reader, err := pdf.NewReader(f, size)
	if err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("pdf parse failed")
		return ""
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn().Err(err).Int("page", i).Str("path", path).Msg("pdf page skipped")
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n")
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// remoteExt takes the extension from the URL's path component so query
// strings on signed URLs do not leak into it.
func remoteExt(locator string) string {
	u, err := neturl.Parse(locator)
	if err != nil {
		return filepath.Ext(locator)
	}
	return filepath.Ext(u.Path)
}
