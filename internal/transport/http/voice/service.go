// Package voice exposes the voice query pipeline over HTTP: one multipart
// upload in, one JSON envelope out, with the synthesized reply served from
// the outputs directory.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"voicerag-server-go/internal/domain/asr"
	"voicerag-server-go/internal/domain/audio"
	"voicerag-server-go/internal/domain/pipeline"
	"voicerag-server-go/internal/domain/tts"
	"voicerag-server-go/internal/platform/config"
	httptransport "voicerag-server-go/internal/transport/http"
)

// Runner is the pipeline surface the service needs.
type Runner interface {
	Process(ctx context.Context, q pipeline.Query) (*pipeline.Result, error)
}

type Service struct {
	cfg     *config.Config
	runner  Runner
	logger  *slog.Logger
	started time.Time
}

func NewService(cfg *config.Config, runner Runner, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("voice service requires config")
	}
	if runner == nil {
		return nil, fmt.Errorf("voice service requires a pipeline")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		started: time.Now(),
	}, nil
}

// Register mounts the voice routes on the API group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/voice", s.handleVoice)
	router.GET("/system/status", s.handleSystemStatus)

	s.logger.Info("voice service routes registered")
	return nil
}

// handleVoice accepts a multipart upload in the "audio" field, runs the
// pipeline and returns the question, the answer and the reply audio location.
func (s *Service) handleVoice(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "missing audio form field", nil)
		return
	}
	defer file.Close()

	srcPath, err := s.saveUpload(file, header)
	if err != nil {
		s.logger.Error("failed to store upload", "error", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to store upload", nil)
		return
	}
	defer os.Remove(srcPath)

	outName := fmt.Sprintf("response_%d.mp3", time.Now().UnixMilli())
	destPath := filepath.Join(s.cfg.Web.OutputDir, outName)

	result, err := s.runner.Process(c.Request.Context(), pipeline.Query{
		SourcePath: srcPath,
		DestPath:   destPath,
	})
	if err != nil {
		status, msg := statusForError(err)
		httptransport.RespondError(c, status, msg, nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"question":  result.Transcript,
		"answer":    result.Answer,
		"audio_url": "/outputs/" + outName,
	}, "")
}

// saveUpload copies the multipart file into the upload directory, keeping the
// original extension so format detection stays meaningful.
func (s *Service) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	dir := s.cfg.Web.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// statusForError maps pipeline failures onto HTTP statuses: missing input is
// the client's 404, a format or duration problem is the client's 422/413, and
// a remote backend failure is a 502.
func statusForError(err error) (int, string) {
	var (
		unsupported *audio.UnsupportedFormatError
		tooLong     *audio.TooLongError
		transcribe  *asr.TranscriptionError
		synthesis   *tts.SynthesisError
	)

	switch {
	case errors.Is(err, pipeline.ErrInputNotFound):
		return http.StatusNotFound, "input audio not found"
	case errors.As(err, &unsupported):
		return http.StatusUnprocessableEntity, unsupported.Error()
	case errors.As(err, &tooLong):
		return http.StatusRequestEntityTooLarge, tooLong.Error()
	case errors.As(err, &transcribe):
		return http.StatusBadGateway, transcribe.Error()
	case errors.As(err, &synthesis):
		return http.StatusBadGateway, synthesis.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// handleSystemStatus reports process and host health.
func (s *Service) handleSystemStatus(c *gin.Context) {
	ctx := c.Request.Context()

	data := gin.H{
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		data["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		data["memory"] = gin.H{
			"total":        vm.Total,
			"used":         vm.Used,
			"used_percent": vm.UsedPercent,
		}
	}

	httptransport.RespondSuccess(c, http.StatusOK, data, "")
}
