package engine

import (
	"strings"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/manifest"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/system"
)

// OpenSource resolves cfg.InputPath into a frame source. A manifest input is
// read first and may override any value already in cfg.
func OpenSource(cfg *config.Config) (source.Source, error) {
	if system.IsManifest(cfg.InputPath) {
		m, err := manifest.Read(cfg.InputPath)
		if err != nil {
			return nil, err
		}
		m.Apply(cfg)
		if len(m.Frames) > 0 {
			return source.NewListSource(m.Frames), nil
		}
	}

	if strings.HasSuffix(strings.ToLower(cfg.InputPath), ".pdf") {
		return source.NewPDFSource(cfg.InputPath, cfg.DPI)
	}
	return source.NewDirSource(cfg.InputPath)
}
