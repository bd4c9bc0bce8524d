package audio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"voicechat/internal/ports"
)

func TestFFMPEGCaptureStartReadAndStop(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "capture.sh", "#!/usr/bin/env bash\nprintf 'hello'\nsleep 2\n")
	capture := NewFFMPEGCapture(script)

	session, err := capture.Start(context.Background(), ports.AudioConfig{})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	buf := make([]byte, 8)
	n, readErr := session.Read(buf)
	if n <= 0 {
		t.Fatalf("expected audio bytes, got n=%d err=%v", n, readErr)
	}
	if !strings.Contains(string(buf[:n]), "hello") {
		t.Fatalf("unexpected bytes: %q", string(buf[:n]))
	}

	if err := session.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
}

func TestFFMPEGCaptureStartEarlyExitKeepsStderr(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "fail.sh", "#!/usr/bin/env bash\necho 'default: Permission denied' 1>&2\nexit 1\n")
	capture := NewFFMPEGCapture(script)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := capture.Start(ctx, ports.AudioConfig{})
	var captureErr *CaptureError
	if !errors.As(err, &captureErr) {
		t.Fatalf("expected capture error, got %v", err)
	}
	if !strings.Contains(err.Error(), "exited before capture started") {
		t.Fatalf("unexpected error: %v", err)
	}
	if captureErr.Stderr != "default: Permission denied" {
		t.Fatalf("unexpected stderr: %q", captureErr.Stderr)
	}
}

func TestFFMPEGCaptureAvailable(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "ffmpeg.sh", "#!/usr/bin/env bash\nexit 0\n")
	if err := NewFFMPEGCapture(script).Available(); err != nil {
		t.Fatalf("expected script to be available, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "no-such-recorder")
	if err := NewFFMPEGCapture(missing).Available(); err == nil {
		t.Fatalf("expected missing recorder to be unavailable")
	}
}

func TestCaptureArgsUsesDefaults(t *testing.T) {
	t.Parallel()

	args := captureArgs(withDefaults(ports.AudioConfig{}))
	want := []string{"-f", "pulse", "-i", "default", "-ac", "1", "-ar", "16000", "-f", "s16le", "-"}
	if !slices.Equal(args[len(args)-len(want):], want) {
		t.Fatalf("unexpected args: %v", args)
	}

	args = captureArgs(withDefaults(ports.AudioConfig{SampleRate: 48000, Channels: 2, InputFormat: "avfoundation", InputDevice: ":0"}))
	if !slices.Contains(args, "avfoundation") || !slices.Contains(args, ":0") || !slices.Contains(args, "48000") {
		t.Fatalf("expected overrides in args: %v", args)
	}
}

func TestNormalizeStopErrExitErrorIsIgnored(t *testing.T) {
	t.Parallel()

	err := exec.Command("bash", "-c", "exit 1").Run()
	if err == nil {
		t.Fatalf("expected command to fail")
	}
	if got := normalizeStopErr(err); got != nil {
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
