package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/effects"
	"github.com/ivlev/scrollseq/internal/engine"
	"github.com/ivlev/scrollseq/internal/sequencer"
	"github.com/ivlev/scrollseq/internal/system"
	"github.com/ivlev/scrollseq/internal/track"
)

const (
	wheelStep = 60.0 // px прокрутки на одно деление колеса
	keyStep   = 20.0
)

// Viewer hosts a sequencer in a window. The virtual page is `pages` viewports
// tall and the sequence plays across the whole of it.
type Viewer struct {
	seq    *sequencer.Sequencer
	events sequencer.Coalescer
	states <-chan sequencer.LoadState
	state  sequencer.LoadState

	pages   float64
	track   track.Track
	scrollY float64
	w, h    int

	frame    *ebiten.Image
	uploaded int // Paints() at the last texture upload
	debug    bool
}

func (v *Viewer) Update() error {
	v.pollLoad()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		v.debug = !v.debug
	}

	_, wheelY := ebiten.Wheel()
	delta := -wheelY * wheelStep
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		delta += keyStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		delta -= keyStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		delta = -v.scrollY
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) {
		delta = v.track.Length() - v.scrollY
	}

	if delta != 0 {
		v.scrollY = v.track.Clamp(v.scrollY + delta)
		v.events.PostScroll(v.track.Offset(v.scrollY), v.track.Length())
	}

	v.events.Flush(v.seq)
	return nil
}

// pollLoad drains the load channel without blocking the game loop.
func (v *Viewer) pollLoad() {
	if v.states == nil {
		return
	}
	select {
	case st, ok := <-v.states:
		if !ok {
			v.states = nil
			return
		}
		v.state = st
		switch st {
		case sequencer.Ready:
			fmt.Printf("[+] Загружено кадров: %d\n", v.seq.FrameCount())
			v.seq.Refresh()
		case sequencer.Failed:
			log.Printf("[-] Последовательность не загружена, поверхность остаётся пустой")
		}
	default:
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	img := v.seq.Surface().Image()
	if img == nil || v.seq.LastRendered() < 0 {
		ebitenutil.DebugPrint(screen, v.state.String())
		return
	}

	if paints := v.seq.Paints(); paints != v.uploaded {
		b := img.Bounds()
		if v.frame == nil || v.frame.Bounds().Size() != b.Size() {
			if v.frame != nil {
				v.frame.Deallocate()
			}
			v.frame = ebiten.NewImage(b.Dx(), b.Dy())
		}
		v.frame.WritePixels(img.Pix)
		v.uploaded = paints
	}
	screen.DrawImage(v.frame, nil)

	if v.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"frame %d/%d  progress %.3f  paints %d  fps %.0f",
			v.seq.LastRendered()+1, v.seq.FrameCount(), v.track.Progress(v.scrollY),
			v.uploaded, ebiten.ActualFPS(),
		))
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.w || outsideHeight != v.h {
		v.w, v.h = outsideWidth, outsideHeight
		progress := v.track.Progress(v.scrollY)

		v.track.ViewportHeight = float64(outsideHeight)
		v.track.ContainerHeight = v.pages * float64(outsideHeight)
		// позиция в треке сохраняется при изменении окна
		v.scrollY = v.track.Clamp(progress * v.track.Length())

		v.events.PostResize(outsideWidth, outsideHeight)
		v.events.PostScroll(v.track.Offset(v.scrollY), v.track.Length())
	}
	return outsideWidth, outsideHeight
}

func main() {
	system.InitResourceLimits()

	inputPtr := flag.String("input", "input/frames", "Манифест (.yaml), папка с кадрами или PDF")
	pagesPtr := flag.Float64("pages", 4, "Высота контейнера в экранах")
	policyPtr := flag.String("policy", "strict", "Поведение при битом кадре: strict, placeholder")
	workersPtr := flag.Int("workers", 0, "Параллельных загрузок (0 - все кадры сразу)")
	dpiPtr := flag.Int("dpi", 150, "DPI для PDF")
	widthPtr := flag.Int("width", 1280, "Ширина окна")
	heightPtr := flag.Int("height", 720, "Высота окна")
	flag.Parse()

	cfg := &config.Config{
		InputPath:     *inputPtr,
		FailurePolicy: *policyPtr,
		Workers:       *workersPtr,
		DPI:           *dpiPtr,
	}

	src, err := engine.OpenSource(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	policy, err := sequencer.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	urls := src.URLs()
	seq := sequencer.New(src, sequencer.Options{
		Policy:     policy,
		Workers:    cfg.Workers,
		AfterPaint: effects.Hook(engine.BuildEffect(cfg)),
	})
	ctx, cancel := context.WithCancel(context.Background())

	v := &Viewer{
		seq:    seq,
		states: seq.Load(ctx, urls),
		pages:  *pagesPtr,
	}
	if v.pages < 1 {
		v.pages = 1
	}

	fmt.Printf("[*] %s: %d кадров, %s\n", cfg.InputPath, len(urls), policy)
	fmt.Println("[*] Колесо / стрелки - прокрутка, Home/End - края, D - отладка, Esc - выход")

	ebiten.SetWindowSize(*widthPtr, *heightPtr)
	ebiten.SetWindowTitle("scrollview - " + cfg.InputPath)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(v)
	cancel()
	seq.Close()
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
}
