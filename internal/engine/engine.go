package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"time"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/effects"
	"github.com/ivlev/scrollseq/internal/sequencer"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/track"
	"github.com/ivlev/scrollseq/internal/video"
)

var (
	ErrEmptySequence = errors.New("источник не содержит кадров")
	ErrNotReady      = errors.New("последовательность не загружена")
	ErrBadSize       = errors.New("размер кадра должен быть положительным")
)

// ExportProject renders a scroll sweep of a frame sequence into a video (or
// a directory of PNGs): the fallback clip for devices where scrubbing is off.
type ExportProject struct {
	Config *config.Config
	Source source.Source
	Writer video.FrameWriter
	Effect effects.Effect
}

func NewExportProject(cfg *config.Config, src source.Source, w video.FrameWriter, eff effects.Effect) *ExportProject {
	return &ExportProject{
		Config: cfg,
		Source: src,
		Writer: w,
		Effect: eff,
	}
}

// Report is what a load produced, printed by -probe and after exports.
type Report struct {
	ID        string
	State     sequencer.LoadState
	Frames    int
	FirstSize image.Point
	LoadTime  time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("[%s] state=%s frames=%d size=%dx%d load=%.2fs",
		r.ID, r.State, r.Frames, r.FirstSize.X, r.FirstSize.Y, r.LoadTime.Seconds())
}

// Load mounts a sequencer over the project's source and waits for a terminal
// state. The caller owns the returned sequencer and must Close it.
func (p *ExportProject) Load(ctx context.Context) (*sequencer.Sequencer, Report, error) {
	policy, err := sequencer.ParseFailurePolicy(p.Config.FailurePolicy)
	if err != nil {
		return nil, Report{}, err
	}

	seq := sequencer.New(p.Source, sequencer.Options{
		Policy:     policy,
		Workers:    p.Config.Workers,
		AfterPaint: effects.Hook(p.Effect),
	})

	start := time.Now()
	state := sequencer.Loading
	for st := range seq.Load(ctx, p.Source.URLs()) {
		state = st
	}

	report := Report{
		ID:       seq.ID(),
		State:    state,
		Frames:   seq.FrameCount(),
		LoadTime: time.Since(start),
	}
	if f := seq.Frame(0); f != nil {
		report.FirstSize = f.Bounds().Size()
	}

	if state != sequencer.Ready {
		seq.Close()
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		return nil, report, fmt.Errorf("%w (%s)", ErrNotReady, state)
	}
	return seq, report, nil
}

func (p *ExportProject) Run(ctx context.Context) error {
	startTime := time.Now()

	if p.Config.Width <= 0 || p.Config.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadSize, p.Config.Width, p.Config.Height)
	}

	seq, report, err := p.Load(ctx)
	if err != nil {
		return err
	}
	defer seq.Close()

	if report.Frames == 0 {
		return ErrEmptySequence
	}

	tr, offsets := p.sweep(report.Frames)
	steps := len(offsets)

	fmt.Println("--- [PROJECT: SCROLL EXPORT] ---")
	fmt.Printf("[*] Источник: %s | Кадров: %d\n", p.Config.InputPath, report.Frames)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Шагов прокрутки: %d | Трек: %.0fpx\n",
		p.Config.Width, p.Config.Height, p.Config.FPS, steps, tr.Length())
	fmt.Println("-----------------------------")

	if err := p.Writer.Start(ctx, p.Config.Width, p.Config.Height, p.Config.FPS); err != nil {
		return err
	}

	renderStart := time.Now()
	seq.Resize(p.Config.Width, p.Config.Height)
	for i, offset := range offsets {
		if err := ctx.Err(); err != nil {
			p.Writer.Close()
			return err
		}
		seq.Scroll(offset, tr.Length())
		// повторный кадр не перерисовывается, но в поток пишется всегда
		if err := p.Writer.WriteFrame(seq.Surface().Image()); err != nil {
			p.Writer.Close()
			return fmt.Errorf("шаг %d: %w", i, err)
		}
	}
	renderTime := time.Since(renderStart)

	if err := p.writeEndCard(); err != nil {
		p.Writer.Close()
		return err
	}

	if err := p.Writer.Close(); err != nil {
		return fmt.Errorf("ошибка сборки видео: %w", err)
	}

	if p.Config.ShowStats {
		totalTime := time.Since(startTime)
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Load: %.2fs\n"+
				"Render: %.2fs (%d paints for %d steps)\n"+
				"Total Time: %.2fs\n"+
				"----------------------------\n",
			report.LoadTime.Seconds(), renderTime.Seconds(), seq.Paints(), steps, totalTime.Seconds(),
		)
	}
	return nil
}

// sweep returns the track and the scroll offsets of a full pass over it.
func (p *ExportProject) sweep(frames int) (track.Track, []float64) {
	tr := p.Config.Track()
	if tr.Length() <= 0 {
		// геометрия не задана: один пиксель прокрутки на кадр
		tr = track.Track{ContainerHeight: float64(frames), ViewportHeight: 1}
		log.Printf("[!] Геометрия трека не задана, используется условный трек %.0fpx", tr.Length())
	}
	return tr, tr.Steps(p.steps(frames))
}

// steps defaults to one scroll position per source frame.
func (p *ExportProject) steps(frames int) int {
	if p.Config.Steps > 0 {
		return p.Config.Steps
	}
	return frames
}

func (p *ExportProject) writeEndCard() error {
	if p.Config.EndCardURL == "" || p.Config.EndCardSecs <= 0 {
		return nil
	}
	card, err := effects.EndCard{URL: p.Config.EndCardURL}.Render(p.Config.Width, p.Config.Height)
	if err != nil {
		log.Printf("[!] Финальная карточка пропущена: %v", err)
		return nil
	}

	n := int(math.Round(p.Config.EndCardSecs * float64(p.Config.FPS)))
	for i := 0; i < n; i++ {
		if err := p.Writer.WriteFrame(card); err != nil {
			return fmt.Errorf("финальная карточка: %w", err)
		}
	}
	return nil
}

// BuildEffect assembles the overlay chain configured for the project.
func BuildEffect(cfg *config.Config) effects.Effect {
	var chain effects.Chain
	if cfg.Dim > 0 {
		chain = append(chain, effects.Dim{Amount: cfg.Dim})
	}
	stops := cfg.DimRamp
	if len(stops) == 0 && cfg.DimWindow != nil {
		stops = cfg.DimWindow.Stops()
	}
	if len(stops) > 0 {
		chain = append(chain, effects.RampedDim{Stops: stops, Eased: cfg.DimEase})
	}
	if cfg.Gradient {
		chain = append(chain, effects.Gradient{Left: 0.8, Right: 0})
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}
