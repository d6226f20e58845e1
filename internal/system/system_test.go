package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	touch(t, filepath.Join(dir, "old.yaml"), base)
	touch(t, filepath.Join(dir, "new.YML"), base.Add(10*time.Minute))
	touch(t, filepath.Join(dir, "newest.txt"), base.Add(20*time.Minute))
	touch(t, filepath.Join(dir, "talk.mp3"), base.Add(5*time.Minute))
	if err := os.Mkdir(filepath.Join(dir, "dir.yaml"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindLatestScript(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "new.YML" {
		t.Errorf("FindLatestScript = %s", got)
	}

	got, err = FindLatestAudio(dir)
	if err != nil || filepath.Base(got) != "talk.mp3" {
		t.Errorf("FindLatestAudio = %s, %v", got, err)
	}

	if _, err := FindLatest(dir, ".pdf"); err == nil {
		t.Error("expected error when nothing matches")
	}
	if _, err := FindLatestScript(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		out     string
		want    float64
		wantErr bool
	}{
		{"123.456000\n", 123.456, false},
		{"  7\n", 7, false},
		{"N/A\n", 0, true},
		{"0.000\n", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.out)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%q) err = %v", tt.out, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.out, got, tt.want)
		}
	}
}

func TestHost(t *testing.T) {
	h := Host(context.Background())
	if h.LogicalCPUs < 1 || h.OS == "" {
		t.Errorf("host = %+v", h)
	}
	if kv := h.KeyVals(); len(kv)%2 != 0 {
		t.Errorf("odd key/value list: %v", kv)
	}
	t.Logf("%v", h.KeyVals())
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:             "512B",
		2048:            "2.0KiB",
		3 * 1024 * 1024: "3.0MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %s, want %s", in, got, want)
		}
	}
}
