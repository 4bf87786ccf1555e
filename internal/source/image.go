package source

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var frameExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsFrameFile reports whether name has a decodable frame extension.
func IsFrameFile(name string) bool {
	return frameExtensions[strings.ToLower(filepath.Ext(name))]
}

// DirSource is a directory of numbered stills, played in filename order.
type DirSource struct {
	paths   []string
	fetcher FileFetcher
}

func NewDirSource(path string) (*DirSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsFrameFile(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &DirSource{paths: paths}, nil
}

func (s *DirSource) URLs() []string {
	return append([]string(nil), s.paths...)
}

func (s *DirSource) Fetch(ctx context.Context, url string) (image.Image, error) {
	return s.fetcher.Fetch(ctx, url)
}

func (s *DirSource) Close() error {
	return nil
}

// ListSource is an explicit, already ordered URL list (local paths, file://
// or http(s) URLs mixed freely).
type ListSource struct {
	urls    []string
	fetcher *MultiFetcher
}

func NewListSource(urls []string) *ListSource {
	return &ListSource{
		urls:    append([]string(nil), urls...),
		fetcher: NewMultiFetcher(nil),
	}
}

func (s *ListSource) URLs() []string {
	return append([]string(nil), s.urls...)
}

func (s *ListSource) Fetch(ctx context.Context, url string) (image.Image, error) {
	return s.fetcher.Fetch(ctx, url)
}

func (s *ListSource) Close() error {
	return nil
}
