package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Canonical PCM format produced by the normalizer and consumed by transcription.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

// WAVHeader is the canonical 44-byte PCM header written by EncodeWAV.
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// EncodeWAV encodes mono PCM-16 samples into WAV format.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio samples")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	numChannels := uint16(Channels)
	bitsPerSample := uint16(BitsPerSample)
	dataSize := uint32(len(samples) * 2)

	header := WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	return buf.Bytes(), nil
}

// Info describes a PCM WAV file. DataBytes and Duration are derived from the
// bytes actually present after the data chunk header, never from the declared
// chunk size alone.
type Info struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	DataBytes     int64
	Duration      float64
}

// ReadInfo walks the RIFF chunks of r and returns the format and measured
// duration. Encoders (ffmpeg included) may insert LIST or fact chunks between
// fmt and data, so a fixed 44-byte layout cannot be assumed.
func ReadInfo(r io.ReadSeeker) (*Info, error) {
	var riff struct {
		ChunkID   [4]byte
		ChunkSize uint32
		Format    [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riff.ChunkID[:]) != "RIFF" || string(riff.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	info := &Info{}
	var haveFmt bool

	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}

		switch string(chunk.ID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if fmtChunk.AudioFormat != 1 {
				return nil, fmt.Errorf("unsupported audio format %d (only PCM is supported)", fmtChunk.AudioFormat)
			}
			info.SampleRate = fmtChunk.SampleRate
			info.Channels = fmtChunk.NumChannels
			info.BitsPerSample = fmtChunk.BitsPerSample
			haveFmt = true
			// Skip any fmt extension bytes.
			if chunk.Size > 16 {
				if _, err := r.Seek(int64(chunk.Size-16), io.SeekCurrent); err != nil {
					return nil, err
				}
			}
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			pos, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, err
			}
			end, err := r.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, err
			}
			// Measure what is actually on disk; cap at the declared size when
			// the file carries trailing chunks.
			actual := end - pos
			if chunk.Size != 0xFFFFFFFF && int64(chunk.Size) < actual {
				actual = int64(chunk.Size)
			}
			if actual <= 0 {
				return nil, fmt.Errorf("no audio data found")
			}
			info.DataBytes = actual

			bytesPerSecond := int64(info.SampleRate) * int64(info.Channels) * int64(info.BitsPerSample) / 8
			if bytesPerSecond <= 0 {
				return nil, fmt.Errorf("invalid sample rate %d", info.SampleRate)
			}
			info.Duration = float64(actual) / float64(bytesPerSecond)
			return info, nil
		default:
			skip := int64(chunk.Size)
			if skip%2 == 1 {
				skip++ // chunks are word-aligned
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("failed to skip %s chunk: %w", chunk.ID, err)
			}
		}
	}

	return nil, fmt.Errorf("missing data chunk")
}

// FileInfo reads WAV info from a file on disk.
func FileInfo(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadInfo(f)
}
