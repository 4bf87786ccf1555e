package source

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source is an ordered frame sequence: URLs gives the playback order and
// Fetch resolves one of those URLs to a decoded image.
type Source interface {
	URLs() []string
	Fetch(ctx context.Context, url string) (image.Image, error)
	Close() error
}

const pdfScheme = "pdf:"

// PDFSource plays the pages of a PDF as frames (e.g. a drawing set exported
// page per camera step).
type PDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewPDFSource(path string, dpi int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *PDFSource) URLs() []string {
	n := f.doc.NumPage()
	urls := make([]string, n)
	for i := range urls {
		urls[i] = pdfScheme + strconv.Itoa(i)
	}
	return urls
}

func (f *PDFSource) Fetch(ctx context.Context, url string) (image.Image, error) {
	page, err := parsePDFPage(url)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// fitz.Document не потокобезопасен: каждый воркер открывает свой экземпляр
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(page, float64(f.dpi))
	if err != nil {
		return nil, fmt.Errorf("pdf page %d: %w", page, err)
	}
	return img, nil
}

func (f *PDFSource) Close() error {
	return f.doc.Close()
}

func parsePDFPage(url string) (int, error) {
	if !strings.HasPrefix(url, pdfScheme) {
		return 0, fmt.Errorf("not a pdf page url: %q", url)
	}
	page, err := strconv.Atoi(strings.TrimPrefix(url, pdfScheme))
	if err != nil || page < 0 {
		return 0, fmt.Errorf("bad pdf page in %q", url)
	}
	return page, nil
}
