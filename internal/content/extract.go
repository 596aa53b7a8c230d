// Package content extracts searchable text from stored document files.
package content

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/docvault/docvault/internal/cache"
	"github.com/docvault/docvault/internal/storage"
)

const cacheTTL = 15 * time.Minute

// Extractor reads the text of stored files for content search. Plain-text
// files are read directly and PDF files have their text layer extracted
// page by page. Unsupported types and read failures of any kind yield an
// empty string, never an error: a candidate that cannot be read simply
// does not match.
type Extractor struct {
	store storage.BlobStore
	texts cache.TextCache // nil disables caching
	log   *logrus.Logger
}

func NewExtractor(store storage.BlobStore, texts cache.TextCache, log *logrus.Logger) *Extractor {
	return &Extractor{store: store, texts: texts, log: log}
}

// Text returns the extracted text of the file at path, or "".
func (e *Extractor) Text(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}

	if e.texts != nil {
		if val, hit, err := e.texts.Get(ctx, cacheKey(path)); err == nil && hit {
			return val
		}
	}

	abs, err := e.store.Resolve(path)
	if err != nil {
		e.log.WithError(err).WithField("path", path).Debug("content: skipping unreadable file")
		return ""
	}

	var text string
	switch mediaType(abs) {
	case "application/pdf":
		text = e.pdfText(abs)
	case "text":
		b, err := os.ReadFile(abs)
		if err != nil {
			e.log.WithError(err).WithField("path", path).Debug("content: read failed")
			return ""
		}
		text = string(b)
	default:
		return ""
	}

	if e.texts != nil && text != "" {
		if err := e.texts.Set(ctx, cacheKey(path), text, cacheTTL); err != nil {
			e.log.WithError(err).Debug("content: cache set failed")
		}
	}
	return text
}

// pdfText concatenates the text layer of every page. The pdf package can
// panic on malformed input, so the whole extraction is fenced.
func (e *Extractor) pdfText(abs string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("path", abs).WithField("panic", r).Debug("content: pdf extraction panicked")
			text = ""
		}
	}()

	f, r, err := pdf.Open(abs)
	if err != nil {
		e.log.WithError(err).WithField("path", abs).Debug("content: pdf open failed")
		return ""
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
	}
	return b.String()
}

// mediaType classifies by extension: "application/pdf", "text" for any
// text/* type, "" otherwise.
func mediaType(path string) string {
	mt := mime.TypeByExtension(filepath.Ext(path))
	switch {
	case mt == "application/pdf":
		return "application/pdf"
	case strings.HasPrefix(mt, "text/"):
		return "text"
	default:
		return ""
	}
}

func cacheKey(path string) string { return "doctext:" + path }
