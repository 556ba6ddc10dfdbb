package eventbus

import "time"

// Pipeline lifecycle topics.
const (
	EventPipelineStarted   = "pipeline:started"
	EventPipelineCompleted = "pipeline:completed"
	EventPipelineFailed    = "pipeline:failed"
	EventStageCompleted    = "pipeline:stage"
)

type PipelineStartedData struct {
	RequestID  string `json:"request_id"`
	SourcePath string `json:"source_path"`
}

// PipelineCompletedData carries the question/answer pair for transcript
// logging plus the reply audio location.
type PipelineCompletedData struct {
	RequestID string `json:"request_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	AudioPath string `json:"audio_path"`
}

type PipelineFailedData struct {
	RequestID string `json:"request_id"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

type StageCompletedData struct {
	RequestID string        `json:"request_id"`
	Stage     string        `json:"stage"`
	Elapsed   time.Duration `json:"elapsed"`
}
