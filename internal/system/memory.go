package system

import (
	"image"
	"log"

	"github.com/shirou/gopsutil/v3/mem"
)

// DecodedSize estimates the resident size of decoded frames at 4 bytes per pixel.
func DecodedSize(frames []image.Image) uint64 {
	var total uint64
	for _, f := range frames {
		if f == nil {
			continue
		}
		b := f.Bounds()
		total += uint64(b.Dx()) * uint64(b.Dy()) * 4
	}
	return total
}

// CheckFrameMemory warns when the decoded sequence would take more than half
// of the memory currently available. It never fails the load.
func CheckFrameMemory(frames []image.Image) uint64 {
	total := DecodedSize(frames)
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось получить сведения о памяти: %v", err)
		return total
	}
	if total > vm.Available/2 {
		log.Printf("[!] Кадры занимают ~%d МБ при доступных %d МБ, уменьшите разрешение последовательности",
			total>>20, vm.Available>>20)
	}
	return total
}
