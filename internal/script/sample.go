package script

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"time"
)

//go:embed sample_show.yaml
var sampleShow []byte

// DefaultDir is where scripts are looked up when none is given.
var DefaultDir = filepath.Join("input", "scripts")

// Sample returns the bundled example script.
func Sample() []byte {
	return append([]byte(nil), sampleShow...)
}

// GeneratePath creates a timestamped script filename in dir.
func GeneratePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("show_%s.yaml", timestamp))
}
