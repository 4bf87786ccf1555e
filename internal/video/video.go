package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// FrameWriter consumes a stream of equally sized frames.
type FrameWriter interface {
	Start(ctx context.Context, width, height, fps int) error
	WriteFrame(img *image.RGBA) error
	Close() error
}

// FFmpegEncoder pipes raw RGBA frames into ffmpeg over stdin, so no frame
// ever touches the disk.
type FFmpegEncoder struct {
	Output  string
	Encoder string // libx264, h264_videotoolbox, h264_nvenc
	Quality int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    bytes.Buffer
	width  int
	height int
	frames int
}

func (e *FFmpegEncoder) Start(ctx context.Context, width, height, fps int) error {
	if e.cmd != nil {
		return fmt.Errorf("encoder already started")
	}
	e.width, e.height = width, height

	if err := os.MkdirAll(filepath.Dir(e.Output), 0755); err != nil {
		return fmt.Errorf("output dir error: %w", err)
	}

	args := e.buildFFmpegArgs(width, height, fps)
	e.cmd = exec.CommandContext(ctx, "ffmpeg", args...)
	e.cmd.Stdout = &e.out
	e.cmd.Stderr = &e.out

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(width, height, fps int) []string {
	encoder := e.Encoder
	if encoder == "" {
		encoder = "libx264"
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		bitrate := e.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", e.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium")
	}

	args = append(args, "-movflags", "+faststart", e.Output)
	return args
}

func (e *FFmpegEncoder) WriteFrame(img *image.RGBA) error {
	if e.stdin == nil {
		return fmt.Errorf("encoder not started")
	}
	if img == nil {
		return fmt.Errorf("nil frame")
	}
	if img.Rect.Dx() != e.width || img.Rect.Dy() != e.height {
		return fmt.Errorf("frame %dx%d, stream is %dx%d", img.Rect.Dx(), img.Rect.Dy(), e.width, e.height)
	}
	if err := writeRawRGBA(e.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	e.frames++
	return nil
}

func (e *FFmpegEncoder) Close() error {
	if e.cmd == nil {
		return nil
	}
	closeErr := e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, e.out.String())
	}
	if closeErr != nil {
		return fmt.Errorf("stdin close error: %w", closeErr)
	}
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	// Проверяем стандартный шаг (stride), иначе копируем в плотный буфер
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		dense := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(dense, dense.Bounds(), img, bounds.Min, draw.Src)
		img = dense
	}
	_, err := w.Write(img.Pix)
	return err
}

// PNGWriter dumps every frame as frame_00000.png into Dir.
type PNGWriter struct {
	Dir    string
	frames int
}

func (p *PNGWriter) Start(ctx context.Context, width, height, fps int) error {
	return os.MkdirAll(p.Dir, 0755)
}

func (p *PNGWriter) WriteFrame(img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("nil frame")
	}
	path := filepath.Join(p.Dir, fmt.Sprintf("frame_%05d.png", p.frames))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	p.frames++
	return f.Close()
}

func (p *PNGWriter) Close() error {
	return nil
}

// Frames reports how many frames were written.
func (p *PNGWriter) Frames() int {
	return p.frames
}
