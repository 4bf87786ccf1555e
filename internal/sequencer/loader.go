package sequencer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollseq/internal/system"
)

var placeholderColor = color.RGBA{R: 0x1a, G: 0x1a, B: 0x1f, A: 0xff}

// Load starts fetching and decoding every URL concurrently. The returned
// channel yields Loading, then a single terminal state, then closes. An
// empty list goes straight to Ready with zero frames. Frames keep the order
// of urls whatever order the decodes finish in.
//
// Load is single-shot: a second call reports the current state and closes.
// After Close the channel is closed without a terminal state.
func (s *Sequencer) Load(ctx context.Context, urls []string) <-chan LoadState {
	out := make(chan LoadState, 2)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(out)
		return out
	}
	if s.state != Unmounted {
		out <- s.state
		s.mu.Unlock()
		close(out)
		return out
	}

	s.count = len(urls)
	if len(urls) == 0 {
		s.state = Ready
		s.frames = []image.Image{}
		s.mu.Unlock()
		log.Printf("[!] [%s] Пустая последовательность: кадров нет, отрисовка отключена", s.id)
		out <- Ready
		close(out)
		return out
	}

	lctx, cancel := context.WithCancel(ctx)
	s.state = Loading
	s.cancel = cancel
	gen := s.gen
	s.mu.Unlock()

	out <- Loading
	fmt.Printf("[*] [%s] Загрузка %d кадров (политика ошибок: %s)\n", s.id, len(urls), s.opts.Policy)

	go func() {
		defer close(out)
		defer cancel()

		start := time.Now()
		frames, err := s.decodeAll(lctx, urls)

		s.mu.Lock()
		if s.closed || s.gen != gen {
			// отмонтировано во время загрузки: результат никому не нужен
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.state = Failed
		} else {
			s.frames = frames
			s.state = Ready
		}
		s.cancel = nil
		state := s.state
		s.mu.Unlock()

		if err != nil {
			log.Printf("[!] [%s] Последовательность не загружена: %v", s.id, err)
		} else {
			total := system.CheckFrameMemory(frames)
			fmt.Printf("[>] [%s] Готово: %d кадров, ~%d МБ, %.2fs\n", s.id, len(frames), total>>20, time.Since(start).Seconds())
		}
		out <- state
	}()

	return out
}

// decodeAll writes every decoded frame into its own pre-assigned slot.
func (s *Sequencer) decodeAll(ctx context.Context, urls []string) ([]image.Image, error) {
	frames := make([]image.Image, len(urls))
	failed := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Workers > 0 {
		g.SetLimit(s.opts.Workers)
	}

	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			img, err := s.fetcher.Fetch(gctx, url)
			if err == nil && (img == nil || img.Bounds().Empty()) {
				err = fmt.Errorf("empty image")
			}
			if err != nil {
				err = fmt.Errorf("frame %d (%s): %w", i, url, err)
				if s.opts.Policy == FailStrict {
					return err
				}
				failed[i] = err
				return nil
			}
			frames[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return fillPlaceholders(frames, failed, s.id)
}

// fillPlaceholders replaces failed slots with a flat frame the size of the
// nearest decoded neighbour. A sequence with no decoded frame at all fails.
func fillPlaceholders(frames []image.Image, failed []error, id string) ([]image.Image, error) {
	var firstErr error
	for _, err := range failed {
		if err != nil {
			firstErr = err
			break
		}
	}
	if firstErr == nil {
		return frames, nil
	}

	for i := range frames {
		if frames[i] != nil {
			continue
		}
		ref := nearestDecoded(frames, i)
		if ref == nil {
			return nil, fmt.Errorf("no frame could be decoded: %w", firstErr)
		}
		log.Printf("[!] [%s] %v, подставлена заглушка", id, failed[i])
		frames[i] = placeholder(ref.Bounds().Size())
	}
	return frames, nil
}

func nearestDecoded(frames []image.Image, i int) image.Image {
	for d := 1; d < len(frames); d++ {
		if j := i - d; j >= 0 && frames[j] != nil && !isPlaceholder(frames[j]) {
			return frames[j]
		}
		if j := i + d; j < len(frames) && frames[j] != nil && !isPlaceholder(frames[j]) {
			return frames[j]
		}
	}
	return nil
}

type placeholderImage struct {
	*image.RGBA
}

func isPlaceholder(img image.Image) bool {
	_, ok := img.(placeholderImage)
	return ok
}

func placeholder(size image.Point) image.Image {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderColor), image.Point{}, draw.Src)
	return placeholderImage{img}
}
