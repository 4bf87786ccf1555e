package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// InitResourceLimits raises the open-file limit: every frame of a sequence
// is fetched concurrently, so a few hundred descriptors can be open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

func FindLatestManifest(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !IsManifest(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено манифестов (*.yaml)", dir)
	}

	return latestFile, nil
}

func IsManifest(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func GetBestH264Encoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}

	return "libx264"
}

// DefaultQuality returns the quality knob for an encoder when the user left it at 0.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // битрейт Q*100 кбит/с
	case "h264_nvenc":
		return 28
	default:
		return 23 // CRF x264
	}
}
