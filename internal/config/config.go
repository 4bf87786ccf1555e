package config

import (
	"github.com/ivlev/scrollseq/internal/renderer"
	"github.com/ivlev/scrollseq/internal/track"
)

type Config struct {
	InputPath     string
	OutputPath    string
	Format        string // mp4 | png
	Width         int
	Height        int
	FPS           int
	Steps         int // количество положений прокрутки при экспорте
	Workers       int // 0 - все кадры декодируются одновременно
	FailurePolicy string
	DPI           int
	Preset        string

	ContainerHeight float64
	ViewportHeight  float64

	Dim          float64
	Gradient     bool
	DimRamp      []renderer.Stop
	DimEase      bool
	DimWindow    *renderer.Window // используется, если DimRamp пуст
	EndCardURL   string
	EndCardSecs  float64
	VideoEncoder string
	Quality      int
	ShowStats    bool
}

func (c *Config) Track() track.Track {
	return track.Track{ContainerHeight: c.ContainerHeight, ViewportHeight: c.ViewportHeight}
}

// ApplyPreset overrides Width/Height for a named aspect preset.
func (c *Config) ApplyPreset() {
	switch c.Preset {
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	}
}
