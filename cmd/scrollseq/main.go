package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/engine"
	"github.com/ivlev/scrollseq/internal/sequencer"
	"github.com/ivlev/scrollseq/internal/system"
	"github.com/ivlev/scrollseq/internal/video"
)

func main() {
	// Все кадры открываются одновременно, поднимаем лимит дескрипторов
	system.InitResourceLimits()

	inputPtr := flag.String("input", "", "Манифест (.yaml), папка с кадрами или PDF (по умолчанию: самый свежий манифест в input/manifests/, иначе input/frames/)")
	outputPtr := flag.String("output", "", "Путь к видео или папке PNG (если пусто, генерируется в output/)")
	formatPtr := flag.String("format", "mp4", "Формат экспорта: mp4, png")
	widthPtr := flag.Int("width", 1280, "Ширина поверхности")
	heightPtr := flag.Int("height", 720, "Высота поверхности")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	fpsPtr := flag.Int("fps", 30, "FPS экспорта")
	stepsPtr := flag.Int("steps", 0, "Число положений прокрутки (0 - по одному на кадр)")
	workersPtr := flag.Int("workers", 0, "Параллельных загрузок (0 - все кадры сразу)")
	policyPtr := flag.String("policy", "strict", "Поведение при битом кадре: strict, placeholder")
	dpiPtr := flag.Int("dpi", 150, "DPI для PDF")
	containerPtr := flag.Float64("container", 0, "Высота прокручиваемого контейнера, px")
	viewportPtr := flag.Float64("viewport", 0, "Высота окна просмотра, px (по умолчанию: высота поверхности)")
	dimPtr := flag.Float64("dim", 0, "Затемнение кадра 0..1 (0.4 = кадр на 60% непрозрачности)")
	gradientPtr := flag.Bool("gradient", false, "Кинематографичный градиент слева направо")
	endCardPtr := flag.String("end-card-url", "", "URL для QR-кода на финальной карточке")
	endCardSecsPtr := flag.Float64("end-card-secs", 2, "Длительность финальной карточки, сек")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	probePtr := flag.Bool("probe", false, "Только загрузить последовательность и вывести отчёт")
	replayPtr := flag.Bool("replay", false, "Прогнать прокрутку через плеер без экспорта и вывести отчёт")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о производительности")

	flag.Parse()

	cfg := &config.Config{
		InputPath:       *inputPtr,
		OutputPath:      *outputPtr,
		Format:          *formatPtr,
		Width:           *widthPtr,
		Height:          *heightPtr,
		Preset:          *presetPtr,
		FPS:             *fpsPtr,
		Steps:           *stepsPtr,
		Workers:         *workersPtr,
		FailurePolicy:   *policyPtr,
		DPI:             *dpiPtr,
		ContainerHeight: *containerPtr,
		ViewportHeight:  *viewportPtr,
		Dim:             *dimPtr,
		Gradient:        *gradientPtr,
		EndCardSecs:     *endCardSecsPtr,
		EndCardURL:      *endCardPtr,
		Quality:         *qualityPtr,
		ShowStats:       *statsPtr,
	}
	cfg.ApplyPreset()

	if cfg.InputPath == "" {
		if latest, err := system.FindLatestManifest("input/manifests"); err == nil {
			cfg.InputPath = latest
		} else {
			cfg.InputPath = "input/frames"
		}
		fmt.Printf("[*] Выбран источник: %s\n", cfg.InputPath)
	}

	src, err := engine.OpenSource(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	if cfg.ViewportHeight == 0 {
		cfg.ViewportHeight = float64(cfg.Height)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *probePtr {
		project := engine.NewExportProject(cfg, src, nil, nil)
		seq, report, err := project.Load(ctx)
		if seq != nil {
			seq.Close()
		}
		fmt.Printf("[*] %s\n", report)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		return
	}

	if *replayPtr {
		project := engine.NewExportProject(cfg, src, nil, engine.BuildEffect(cfg))
		report, err := project.Replay(ctx, sequencer.DefaultTick)
		fmt.Printf("[*] %s\n", report)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		return
	}

	writer := newWriter(cfg)
	project := engine.NewExportProject(cfg, src, writer, engine.BuildEffect(cfg))
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка экспорта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputPath)
}

func newWriter(cfg *config.Config) video.FrameWriter {
	if cfg.OutputPath == "" {
		baseName := filepath.Base(strings.TrimSuffix(cfg.InputPath, string(filepath.Separator)))
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputPath = filepath.Join("output", fmt.Sprintf("%s_%s", cleanName, timestamp))
		if cfg.Format != "png" {
			cfg.OutputPath += ".mp4"
		}
	}

	if cfg.Format == "png" {
		return &video.PNGWriter{Dir: cfg.OutputPath}
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}
	cfg.VideoEncoder = encoderName
	if cfg.Quality == 0 {
		cfg.Quality = system.DefaultQuality(encoderName)
	}

	return &video.FFmpegEncoder{
		Output:  cfg.OutputPath,
		Encoder: cfg.VideoEncoder,
		Quality: cfg.Quality,
	}
}
