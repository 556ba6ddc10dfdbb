package audio

import "fmt"

// TooLongError reports a normalized recording over the configured ceiling.
type TooLongError struct {
	Duration float64
	Limit    float64
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("audio too long (%.1fs), limit %.0fs", e.Duration, e.Limit)
}

// Guard measures normalized audio and rejects recordings over the ceiling.
// Duration comes from the sample data on disk, not the container's metadata,
// which is why it runs after normalization.
type Guard struct {
	maxSeconds float64
}

func NewGuard(maxSeconds float64) *Guard {
	return &Guard{maxSeconds: maxSeconds}
}

// Check returns the measured duration in seconds, or a TooLongError when it
// exceeds the ceiling.
func (g *Guard) Check(path string) (float64, error) {
	info, err := FileInfo(path)
	if err != nil {
		return 0, fmt.Errorf("failed to measure %s: %w", path, err)
	}
	if info.Duration > g.maxSeconds {
		return info.Duration, &TooLongError{Duration: info.Duration, Limit: g.maxSeconds}
	}
	return info.Duration, nil
}
