package device

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Info describes the compute device the inference runner should use.
// Kind is "cuda" when a usable discrete GPU is present, "cpu" otherwise.
type Info struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`       // e.g. "NVIDIA GPU (10de:2684)"
	VRAMTotal int64  `json:"vram_total"` // bytes, 0 if unknown
	Driver    string `json:"driver"`     // e.g. "nvidia", "amdgpu"
}

// gpuDrivers are kernel drivers whose devices the ML stack can target.
var gpuDrivers = map[string]bool{
	"nvidia": true,
	"amdgpu": true,
}

var (
	cached     *Info
	detectOnce sync.Once
)

// Detect probes the system once for a usable GPU via sysfs and returns the
// device choice, fixed for the process lifetime. FORCE_DEVICE overrides
// detection ("cpu" or "cuda").
func Detect() *Info {
	detectOnce.Do(func() {
		if forced := os.Getenv("FORCE_DEVICE"); forced != "" {
			cached = &Info{Kind: forced, Name: "forced"}
			log.Printf("[device] forced via FORCE_DEVICE: %s", forced)
			return
		}
		cached = detect()
		log.Printf("[device] selected: kind=%s device=%q vram_total=%d MB driver=%s",
			cached.Kind, cached.Name, cached.VRAMTotal/1024/1024, cached.Driver)
	})
	return cached
}

func detect() *Info {
	info := &Info{Kind: "cpu"}

	cards, err := filepath.Glob("/sys/class/drm/card[0-9]*")
	if err != nil {
		return info
	}

	for _, card := range cards {
		// Skip render nodes (cardN-XXX)
		if strings.Contains(filepath.Base(card), "-") {
			continue
		}

		deviceDir := filepath.Join(card, "device")

		driverLink, err := os.Readlink(filepath.Join(deviceDir, "driver"))
		if err != nil {
			continue
		}
		driver := filepath.Base(driverLink)
		if !gpuDrivers[driver] {
			continue
		}

		info.Kind = "cuda"
		info.Driver = driver
		info.Name = readDeviceName(deviceDir)

		vramBytes, err := readSysfsInt(filepath.Join(deviceDir, "mem_info_vram_total"))
		if err == nil {
			info.VRAMTotal = vramBytes
		}
		break
	}

	return info
}

func readSysfsInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func readDeviceName(deviceDir string) string {
	data, err := os.ReadFile(filepath.Join(deviceDir, "uevent"))
	if err != nil {
		return "Unknown GPU"
	}

	var vendorID, deviceID string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "PCI_ID=") {
			parts := strings.Split(strings.TrimPrefix(line, "PCI_ID="), ":")
			if len(parts) == 2 {
				vendorID = strings.ToLower(parts[0])
				deviceID = strings.ToLower(parts[1])
			}
		}
	}

	switch vendorID {
	case "10de":
		return "NVIDIA GPU (" + deviceID + ")"
	case "1002":
		return "AMD GPU (" + deviceID + ")"
	case "":
		return "Unknown GPU"
	}
	return "GPU (" + vendorID + ":" + deviceID + ")"
}
