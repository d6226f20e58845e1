// Package system holds host-facing helpers: locating the newest input files,
// probing narration length with ffprobe, and reporting host resources.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	ScriptExtensions = []string{".yaml", ".yml"}
	AudioExtensions  = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
)

// FindLatest returns the most recently modified file in dir whose name ends
// with one of exts (case-insensitive).
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(exts, "/"), dir)
	}
	return latestFile, nil
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLatestScript returns the newest show script in dir.
func FindLatestScript(dir string) (string, error) {
	return FindLatest(dir, ScriptExtensions...)
}

// FindLatestAudio returns the newest narration track in dir.
func FindLatestAudio(dir string) (string, error) {
	return FindLatest(dir, AudioExtensions...)
}

// GetAudioDuration asks ffprobe for the length of an audio file in seconds.
func GetAudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	return parseDuration(string(out))
}

func parseDuration(out string) (float64, error) {
	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%f", &duration); err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", strings.TrimSpace(out), err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("ffprobe reported non-positive duration %.3f", duration)
	}
	return duration, nil
}

// RaiseFileLimit lifts the soft open-file limit to want (capped at the hard
// limit). Asset preflight opens one file per worker.
func RaiseFileLimit(want uint64, logger *log.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Debug("getrlimit failed", "err", err)
		return
	}
	if rLimit.Cur >= want {
		return
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Debug("setrlimit failed", "err", err)
		return
	}
	logger.Debug("open file limit raised", "limit", rLimit.Cur)
}

// HostInfo is a snapshot of the machine's resources.
type HostInfo struct {
	OS           string
	Arch         string
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
	AvailMemory  uint64
}

// Host reports CPU and memory. Fields gopsutil cannot read stay zero.
func Host(ctx context.Context) HostInfo {
	info := HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH, LogicalCPUs: runtime.NumCPU()}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemory = vm.Total
		info.AvailMemory = vm.Available
	}
	return info
}

// KeyVals renders the snapshot as log key/value pairs.
func (h HostInfo) KeyVals() []any {
	return []any{
		"os", h.OS + "/" + h.Arch,
		"cpus", h.LogicalCPUs,
		"cores", h.PhysicalCPUs,
		"mem_avail", formatBytes(h.AvailMemory),
		"mem_total", formatBytes(h.TotalMemory),
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
