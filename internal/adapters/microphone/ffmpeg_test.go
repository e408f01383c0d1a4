package microphone

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFFMPEGOpenReadStopRelease(t *testing.T) {
	t.Parallel()

	// prints a chunk, then a trailer once interrupted
	script := writeScript(t, "capture.sh", "#!/usr/bin/env bash\ntrap 'printf trailer; exit 255' INT\nprintf 'hello'\nwhile true; do sleep 0.05; done\n")
	mic := NewFFMPEG(Config{Command: script})

	s, err := mic.Open(context.Background())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if s.Format() != "audio/webm" {
		t.Fatalf("unexpected format: %q", s.Format())
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	data, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got := string(data); got != "hellotrailer" {
		t.Fatalf("unexpected bytes: %q", got)
	}

	if err := s.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second release failed: %v", err)
	}
}

func TestFFMPEGReleaseKillsStuckProcess(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "stuck.sh", "#!/usr/bin/env bash\ntrap '' INT\nwhile true; do sleep 0.05; done\n")
	s, err := NewFFMPEG(Config{Command: script}).Open(context.Background())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	_ = s.Stop()
	done := make(chan error, 1)
	go func() { done <- s.Release() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("release failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("release did not kill the process")
	}
}

func TestFFMPEGOpenEarlyExitIsDenied(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "fail.sh", "#!/usr/bin/env bash\necho 'Permission denied' 1>&2\nexit 1\n")
	_, err := NewFFMPEG(Config{Command: script}).Open(context.Background())
	if err == nil {
		t.Fatalf("expected early exit error")
	}
	if !strings.Contains(err.Error(), "exited before capture started") || !strings.Contains(err.Error(), "Permission denied") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFFMPEGOpenMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := NewFFMPEG(Config{Command: filepath.Join(t.TempDir(), "missing")}).Open(context.Background())
	if err == nil {
		t.Fatal("expected start error")
	}
}

func TestFFMPEGArgs(t *testing.T) {
	t.Parallel()

	got := strings.Join(NewFFMPEG(Config{InputFormat: "alsa", InputDevice: "hw:0"}).args(), " ")
	for _, want := range []string{"-f alsa", "-i hw:0", "-ac 1", "-c:a libopus", "-f webm -"} {
		if !strings.Contains(got, want) {
			t.Fatalf("args %q missing %q", got, want)
		}
	}

	defaults := NewFFMPEG(Config{})
	if defaults.cfg.Command != "ffmpeg" || defaults.cfg.InputFormat != "pulse" || defaults.cfg.InputDevice != "default" {
		t.Fatalf("unexpected defaults: %+v", defaults.cfg)
	}
}

func TestNormalizeExitErrIgnoresExitError(t *testing.T) {
	t.Parallel()

	err := exec.Command("bash", "-c", "exit 1").Run()
	if err == nil {
		t.Fatalf("expected command to fail")
	}
	if got := normalizeExitErr(err); got != nil {
		t.Fatalf("expected nil for exit error, got %v", got)
	}
}

func writeScript(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
