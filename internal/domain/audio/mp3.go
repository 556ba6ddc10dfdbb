package audio

import (
	"fmt"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// normalizeMP3 decodes an mp3 without shelling out. go-mp3 emits interleaved
// 16-bit stereo at the source rate, so the samples are downmixed to mono and
// resampled to the canonical rate before encoding.
func (n *FFmpegNormalizer) normalizeMP3(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("mp3 decode: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("mp3 read: %w", err)
	}
	if len(raw) < 4 {
		return fmt.Errorf("mp3 produced no samples")
	}

	// Interleaved L/R int16 frames.
	frames := len(raw) / 4
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		mono[i] = int16((int32(l) + int32(r)) / 2)
	}

	resampled := resampleLinear(mono, dec.SampleRate(), SampleRate)

	data, err := EncodeWAV(resampled, SampleRate)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// resampleLinear converts mono PCM between sample rates by linear
// interpolation. Good enough for speech headed into transcription.
func resampleLinear(in []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(in) == 0 {
		return in
	}

	outLen := int(int64(len(in)) * int64(toRate) / int64(fromRate))
	if outLen == 0 {
		return nil
	}

	out := make([]int16, outLen)
	ratio := float64(fromRate) / float64(toRate)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(idx)
		sample := float64(in[idx])*(1-frac) + float64(in[idx+1])*frac
		out[i] = int16(sample)
	}
	return out
}
