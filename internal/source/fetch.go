package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

// FileFetcher decodes frames from the local filesystem. Both bare paths and
// file:// URLs are accepted.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return img, nil
}

// HTTPFetcher downloads and decodes frames over http(s).
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return img, nil
}

// MultiFetcher dispatches on the URL scheme: http(s) goes to HTTP, pdf:N to
// the PDF source when one is attached, everything else is a local file.
type MultiFetcher struct {
	HTTP *HTTPFetcher
	File FileFetcher
	PDF  *PDFSource
}

func NewMultiFetcher(pdf *PDFSource) *MultiFetcher {
	return &MultiFetcher{HTTP: NewHTTPFetcher(), PDF: pdf}
}

func (m *MultiFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return m.HTTP.Fetch(ctx, url)
	case strings.HasPrefix(url, pdfScheme):
		if m.PDF == nil {
			return nil, fmt.Errorf("pdf page %q without a pdf source", url)
		}
		return m.PDF.Fetch(ctx, url)
	default:
		return m.File.Fetch(ctx, url)
	}
}
