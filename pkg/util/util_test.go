package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.000"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}

	if got := FormatSeconds(90.25); got != "00:01:30.250" {
		t.Errorf("FormatSeconds(90.25) = %q", got)
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := map[string]float64{
		"30/1":       30,
		"30000/1001": 30000.0 / 1001.0,
		"0/0":        0,
		"25":         0,
		"a/b":        0,
	}
	for in, want := range cases {
		if got := ParseFrameRate(in); got != want {
			t.Errorf("ParseFrameRate(%q) = %f, want %f", in, got, want)
		}
	}
}

func TestTempFileAndCleanup(t *testing.T) {
	dir := t.TempDir()

	f, err := TempFile(dir, "audio-", ".wav")
	if err != nil {
		t.Fatalf("TempFile failed: %v", err)
	}
	f.Close()

	if !strings.HasSuffix(f.Name(), ".wav") || !strings.HasPrefix(filepath.Base(f.Name()), "audio-") {
		t.Errorf("unexpected temp name %q", f.Name())
	}
	if !FileExists(f.Name()) {
		t.Fatal("temp file does not exist")
	}

	CleanupFiles(f.Name(), filepath.Join(dir, "missing"))
	if FileExists(f.Name()) {
		t.Error("temp file was not removed")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if st, err := os.Stat(path); err != nil || !st.IsDir() {
		t.Errorf("expected directory at %s", path)
	}
}
