// Package pipeline orchestrates one voice query: normalize the uploaded
// audio, guard its duration, transcribe it, generate an answer and synthesize
// a spoken reply. Stages run strictly in that order; blocking work is
// offloaded to a shared bounded worker pool, and the per-request working area
// is removed on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"voicerag-server-go/internal/domain/asr"
	"voicerag-server-go/internal/domain/audio"
	"voicerag-server-go/internal/domain/eventbus"
	"voicerag-server-go/internal/domain/llm"
	"voicerag-server-go/internal/domain/tts"
	"voicerag-server-go/internal/util/work"
)

// Query is one voice request: where the uploaded audio lives and where the
// spoken reply must be written. It is owned by a single Process call.
type Query struct {
	SourcePath string
	DestPath   string
}

// Result is returned only when every stage completed. There are no partial
// results; any hard stage failure surfaces an *Error instead.
type Result struct {
	Transcript string
	Answer     string
	AudioPath  string
}

// Options wires the pipeline's collaborators. All providers are required;
// Bus is optional.
type Options struct {
	Normalizer         audio.Normalizer
	ASR                asr.Provider
	LLM                llm.Provider
	TTS                tts.Provider
	Pool               *work.Pool
	Bus                *eventbus.Bus
	Logger             *slog.Logger
	MaxDurationSeconds float64
	// TempDir is the parent for working areas. Empty means the OS default.
	TempDir string
}

type Pipeline struct {
	normalizer audio.Normalizer
	asr        asr.Provider
	llm        llm.Provider
	tts        tts.Provider
	pool       *work.Pool
	bus        *eventbus.Bus
	logger     *slog.Logger
	guard      *audio.Guard
	tempDir    string
}

func New(opts Options) (*Pipeline, error) {
	if opts.Normalizer == nil || opts.ASR == nil || opts.LLM == nil || opts.TTS == nil {
		return nil, fmt.Errorf("pipeline requires normalizer, asr, llm and tts providers")
	}
	if opts.Pool == nil {
		return nil, fmt.Errorf("pipeline requires a worker pool")
	}
	if opts.MaxDurationSeconds <= 0 {
		opts.MaxDurationSeconds = 120
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Pipeline{
		normalizer: opts.Normalizer,
		asr:        opts.ASR,
		llm:        opts.LLM,
		tts:        opts.TTS,
		pool:       opts.Pool,
		bus:        opts.Bus,
		logger:     opts.Logger,
		guard:      audio.NewGuard(opts.MaxDurationSeconds),
		tempDir:    opts.TempDir,
	}, nil
}

// Process runs the four stages for one query. On success the destination
// audio exists and the result carries the verbatim transcript and the answer.
// An answer-generation failure does not abort the run: the diagnostic text
// becomes the answer and is still spoken. Every other stage failure aborts
// with an *Error naming the stage, after the working area is removed.
func (p *Pipeline) Process(ctx context.Context, q Query) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	log := p.logger.With("request_id", requestID)

	if _, err := os.Stat(q.SourcePath); err != nil {
		return nil, NewStageError(StageInput, fmt.Errorf("%w: %s", ErrInputNotFound, q.SourcePath))
	}

	// Extension is advisory only; the normalizer decides what decodes.
	if !audio.IsKnownExtension(q.SourcePath) {
		log.Warn("unrecognized audio extension, attempting decode anyway", "source", q.SourcePath)
	}

	p.publish(eventbus.EventPipelineStarted, eventbus.PipelineStartedData{
		RequestID:  requestID,
		SourcePath: q.SourcePath,
	})

	workDir, err := os.MkdirTemp(p.tempDir, "voice_proc_")
	if err != nil {
		return nil, p.fail(log, requestID, StageNormalize, fmt.Errorf("failed to create working area: %w", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			log.Error("failed to remove working area", "dir", workDir, "error", rmErr)
		}
	}()

	wavPath := filepath.Join(workDir, "input.wav")

	if err := p.runStage(ctx, requestID, StageNormalize, func() error {
		return p.normalizer.Normalize(ctx, q.SourcePath, wavPath)
	}); err != nil {
		return nil, p.fail(log, requestID, StageNormalize, err)
	}

	// Duration is measured from the normalized samples, never from the
	// source container's metadata, and before any transcription cost. The
	// header read is cheap enough to stay off the pool.
	duration, err := p.guard.Check(wavPath)
	if err != nil {
		return nil, p.fail(log, requestID, StageGuard, err)
	}
	log.Debug("audio normalized", "duration_seconds", duration)

	transcript, err := p.offload(ctx, requestID, StageTranscribe, func() (string, error) {
		return p.asr.Transcribe(ctx, wavPath)
	})
	if err != nil {
		return nil, p.fail(log, requestID, StageTranscribe, err)
	}

	answer, err := p.offload(ctx, requestID, StageAnswer, func() (string, error) {
		return p.llm.Answer(ctx, transcript)
	})
	if err != nil {
		// Cancellation of the whole invocation still propagates; only
		// backend failures become a speakable diagnostic.
		if ctx.Err() != nil {
			return nil, p.fail(log, requestID, StageAnswer, ctx.Err())
		}
		log.Warn("answer generation failed, replying with diagnostic", "error", err)
		answer = fmt.Sprintf("answer generation failed: %v", err)
	}

	if err := p.runStage(ctx, requestID, StageSynthesize, func() error {
		return p.tts.Synthesize(ctx, answer, q.DestPath)
	}); err != nil {
		return nil, p.fail(log, requestID, StageSynthesize, err)
	}

	result := &Result{Transcript: transcript, Answer: answer, AudioPath: q.DestPath}

	p.publish(eventbus.EventPipelineCompleted, eventbus.PipelineCompletedData{
		RequestID: requestID,
		Question:  result.Transcript,
		Answer:    result.Answer,
		AudioPath: result.AudioPath,
	})
	log.Info("voice query processed", "duration_seconds", duration, "audio", result.AudioPath)

	return result, nil
}

// runStage offloads a void stage to the pool and reports its timing.
func (p *Pipeline) runStage(ctx context.Context, requestID string, stage Stage, fn func() error) error {
	start := time.Now()
	if _, err := work.Run(ctx, p.pool, func() (struct{}, error) {
		return struct{}{}, fn()
	}); err != nil {
		return err
	}
	p.publish(eventbus.EventStageCompleted, eventbus.StageCompletedData{
		RequestID: requestID,
		Stage:     string(stage),
		Elapsed:   time.Since(start),
	})
	return nil
}

// offload runs fn on the shared pool and suspends until it completes.
func (p *Pipeline) offload(ctx context.Context, requestID string, stage Stage, fn func() (string, error)) (string, error) {
	start := time.Now()
	out, err := work.Run(ctx, p.pool, fn)
	if err != nil {
		return out, err
	}
	p.publish(eventbus.EventStageCompleted, eventbus.StageCompletedData{
		RequestID: requestID,
		Stage:     string(stage),
		Elapsed:   time.Since(start),
	})
	return out, nil
}

func (p *Pipeline) fail(log *slog.Logger, requestID string, stage Stage, cause error) *Error {
	err := NewStageError(stage, cause)
	log.Error("pipeline stage failed", "stage", string(stage), "error", cause)
	p.publish(eventbus.EventPipelineFailed, eventbus.PipelineFailedData{
		RequestID: requestID,
		Stage:     string(stage),
		Reason:    cause.Error(),
	})
	return err
}

func (p *Pipeline) publish(topic string, data interface{}) {
	if p.bus != nil {
		p.bus.Publish(topic, data)
	}
}
