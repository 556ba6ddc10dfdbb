package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// KnownExtensions lists the containers we expect to see. Membership is
// advisory only and used for diagnostics; ffmpeg decides what actually decodes.
var KnownExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".mp4":  true,
	".webm": true,
}

// IsKnownExtension reports whether the file's extension is one we expect.
func IsKnownExtension(path string) bool {
	return KnownExtensions[strings.ToLower(filepath.Ext(path))]
}

// UnsupportedFormatError means the source audio could not be decoded: corrupt
// data, an unknown codec, or an empty file.
type UnsupportedFormatError struct {
	Path  string
	Cause error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio format %q: %v", e.Path, e.Cause)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Cause
}

// Normalizer decodes arbitrary input audio and re-encodes it to canonical
// 16 kHz mono 16-bit PCM WAV at dst.
type Normalizer interface {
	Normalize(ctx context.Context, src, dst string) error
}

// FFmpegNormalizer shells out to ffmpeg for decoding, with a pure-Go fast path
// for mp3 input. ffmpeg is the format authority: whatever it can decode is
// accepted, regardless of extension.
type FFmpegNormalizer struct {
	binary string
	logger *slog.Logger
}

func NewFFmpegNormalizer(binary string, logger *slog.Logger) *FFmpegNormalizer {
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpegNormalizer{binary: binary, logger: logger}
}

func (n *FFmpegNormalizer) Normalize(ctx context.Context, src, dst string) error {
	st, err := os.Stat(src)
	if err != nil {
		return &UnsupportedFormatError{Path: src, Cause: err}
	}
	if st.Size() == 0 {
		return &UnsupportedFormatError{Path: src, Cause: errors.New("zero-length file")}
	}

	if strings.EqualFold(filepath.Ext(src), ".mp3") {
		if err := n.normalizeMP3(src, dst); err == nil {
			return nil
		} else {
			n.logger.Debug("mp3 fast path failed, falling back to ffmpeg",
				"src", src, "error", err)
		}
	}

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}

	cmd := exec.CommandContext(ctx, n.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return &UnsupportedFormatError{Path: src, Cause: errors.New(detail)}
	}

	if st, err := os.Stat(dst); err != nil || st.Size() == 0 {
		return &UnsupportedFormatError{Path: src, Cause: errors.New("decoder produced no output")}
	}

	return nil
}
