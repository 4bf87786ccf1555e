package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/renderer"
)

// Manifest describes a scroll-scrubbed sequence and how to present it
type Manifest struct {
	Version string   `yaml:"version"`
	Dir     string   `yaml:"dir,omitempty"`    // Directory of stills, played in filename order
	PDF     string   `yaml:"pdf,omitempty"`    // PDF whose pages are frames
	Frames  []string `yaml:"frames,omitempty"` // Explicit ordered frame URLs

	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	Track         Track   `yaml:"track"`
	FailurePolicy string  `yaml:"failure_policy,omitempty"` // strict | placeholder
	Workers       int     `yaml:"workers,omitempty"`
	Effects       Effects `yaml:"effects,omitempty"`
	Export        Export  `yaml:"export,omitempty"`
}

// Track is the scroll geometry of the sticky container hosting the sequence
type Track struct {
	ContainerHeight float64 `yaml:"container_height"`
	ViewportHeight  float64 `yaml:"viewport_height"`
}

type Effects struct {
	Dim       float64          `yaml:"dim,omitempty"`      // 0..1
	Gradient  bool             `yaml:"gradient,omitempty"` // cinematic left-to-right overlay
	DimRamp   []renderer.Stop  `yaml:"dim_ramp,omitempty"` // dim driven by scroll progress
	DimEase   bool             `yaml:"dim_ease,omitempty"`
	DimWindow *renderer.Window `yaml:"dim_window,omitempty"` // dims one band of the track, e.g. behind a caption
}

type Export struct {
	Output      string  `yaml:"output,omitempty"`
	Format      string  `yaml:"format,omitempty"` // mp4 | png
	FPS         int     `yaml:"fps,omitempty"`
	Steps       int     `yaml:"steps,omitempty"`
	EndCardURL  string  `yaml:"end_card_url,omitempty"`
	EndCardSecs float64 `yaml:"end_card_seconds,omitempty"`
	Quality     int     `yaml:"quality,omitempty"`
}

// Validate checks that exactly one frame source is set and the geometry is sane.
func (m *Manifest) Validate() error {
	sources := 0
	for _, set := range []bool{m.Dir != "", m.PDF != "", len(m.Frames) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("manifest must set exactly one of dir, pdf, frames (got %d)", sources)
	}
	if m.Track.ContainerHeight < 0 || m.Track.ViewportHeight < 0 {
		return fmt.Errorf("negative track geometry")
	}
	if m.Effects.Dim < 0 || m.Effects.Dim > 1 {
		return fmt.Errorf("dim must be within [0,1], got %v", m.Effects.Dim)
	}
	if w := m.Effects.DimWindow; w != nil {
		if w.Start < 0 || w.End > 1 || w.Start+2*w.Edge > w.End || w.Edge < 0 {
			return fmt.Errorf("dim_window must fit in [0,1] with both edges, got %+v", *w)
		}
		if w.Amount < 0 || w.Amount > 1 {
			return fmt.Errorf("dim_window amount must be within [0,1], got %v", w.Amount)
		}
	}
	return nil
}

// Resolve makes relative dir/pdf/frame paths relative to the manifest file.
func (m *Manifest) Resolve(manifestPath string) {
	base := filepath.Dir(manifestPath)
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) || isURL(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	m.Dir = rel(m.Dir)
	m.PDF = rel(m.PDF)
	for i := range m.Frames {
		m.Frames[i] = rel(m.Frames[i])
	}
}

// Apply copies every value the manifest sets onto cfg. Zero values leave
// cfg (flags and defaults) untouched.
func (m *Manifest) Apply(cfg *config.Config) {
	switch {
	case m.Dir != "":
		cfg.InputPath = m.Dir
	case m.PDF != "":
		cfg.InputPath = m.PDF
	}
	if m.Width > 0 && m.Height > 0 {
		cfg.Width, cfg.Height = m.Width, m.Height
	}
	if m.Track.ContainerHeight > 0 {
		cfg.ContainerHeight = m.Track.ContainerHeight
	}
	if m.Track.ViewportHeight > 0 {
		cfg.ViewportHeight = m.Track.ViewportHeight
	}
	if m.FailurePolicy != "" {
		cfg.FailurePolicy = m.FailurePolicy
	}
	if m.Workers > 0 {
		cfg.Workers = m.Workers
	}
	if m.Effects.Dim > 0 {
		cfg.Dim = m.Effects.Dim
	}
	if m.Effects.Gradient {
		cfg.Gradient = true
	}
	if len(m.Effects.DimRamp) > 0 {
		cfg.DimRamp = m.Effects.DimRamp
	}
	if m.Effects.DimEase {
		cfg.DimEase = true
	}
	if m.Effects.DimWindow != nil {
		cfg.DimWindow = m.Effects.DimWindow
	}
	if m.Export.Output != "" {
		cfg.OutputPath = m.Export.Output
	}
	if m.Export.Format != "" {
		cfg.Format = m.Export.Format
	}
	if m.Export.FPS > 0 {
		cfg.FPS = m.Export.FPS
	}
	if m.Export.Steps > 0 {
		cfg.Steps = m.Export.Steps
	}
	if m.Export.EndCardURL != "" {
		cfg.EndCardURL = m.Export.EndCardURL
	}
	if m.Export.EndCardSecs > 0 {
		cfg.EndCardSecs = m.Export.EndCardSecs
	}
	if m.Export.Quality > 0 {
		cfg.Quality = m.Export.Quality
	}
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "file://")
}
