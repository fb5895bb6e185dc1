// Package textsource reads the text fed to the recipes: review files, stdin,
// or web pages. HTML input is converted to Markdown before it reaches a
// model.
package textsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const (
	// Stdin is the source name that reads standard input.
	Stdin = "-"

	// MaxBodySize caps how much is read from any single source (5MB).
	MaxBodySize = 5 * 1024 * 1024

	// DefaultFetchTimeout bounds a URL fetch when Reader.Timeout is unset.
	DefaultFetchTimeout = 30 * time.Second
	defaultUserAgent    = "llmrecipes/1.0"
)

// ErrTooLarge is returned when a source exceeds MaxBodySize.
var ErrTooLarge = fmt.Errorf("textsource: input exceeds %d bytes", MaxBodySize)

// Document is the text read from one source.
type Document struct {
	Source string
	Text   string
	// Converted is true when the source was HTML and Text holds Markdown.
	Converted bool
}

// Reader loads documents. The zero value reads stdin from os.Stdin and uses
// http.DefaultClient for URLs.
type Reader struct {
	Stdin      io.Reader
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Read loads source, which is "-" for stdin, an http(s) URL, or a file path.
func (r Reader) Read(ctx context.Context, source string) (Document, error) {
	switch {
	case source == Stdin || source == "":
		stdin := r.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		text, err := readLimited(stdin)
		if err != nil {
			return Document{}, fmt.Errorf("read stdin: %w", err)
		}
		return newDocument(Stdin, text, looksLikeHTML(text))

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return r.fetch(ctx, source)

	default:
		f, err := os.Open(source)
		if err != nil {
			return Document{}, fmt.Errorf("open %s: %w", source, err)
		}
		defer f.Close()

		text, err := readLimited(f)
		if err != nil {
			return Document{}, fmt.Errorf("read %s: %w", source, err)
		}
		return newDocument(source, text, isHTMLFile(source) || looksLikeHTML(text))
	}
}

// ReadAll loads every source in order and stops at the first failure.
func (r Reader) ReadAll(ctx context.Context, sources []string) ([]Document, error) {
	docs := make([]Document, 0, len(sources))
	for _, source := range sources {
		doc, err := r.Read(ctx, source)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r Reader) fetch(ctx context.Context, url string) (Document, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.8")

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	text, err := readLimited(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", url, err)
	}

	contentType := resp.Header.Get("Content-Type")
	isHTML := strings.Contains(contentType, "html") || (contentType == "" && looksLikeHTML(text))
	return newDocument(url, text, isHTML)
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxBodySize {
		return "", ErrTooLarge
	}
	return string(data), nil
}

func newDocument(source, text string, isHTML bool) (Document, error) {
	if !isHTML {
		return Document{Source: source, Text: strings.TrimSpace(text)}, nil
	}
	markdown, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return Document{}, fmt.Errorf("convert %s to markdown: %w", source, err)
	}
	return Document{Source: source, Text: strings.TrimSpace(markdown), Converted: true}, nil
}

func isHTMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func looksLikeHTML(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// IsNotExist reports whether err means a file source does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
