package config

import "time"

// DefaultConfig returns the documented defaults. Every loader starts from this
// and overlays the config file and environment on top.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
			OutputDir: "./outputs",
			UploadDir: "./uploads",
		},
		Audio: AudioConfig{
			MaxDurationSeconds: 120,
		},
		Pool: PoolConfig{
			Workers:    4,
			QueueDepth: 64,
		},
		ASR: ASRConfig{
			PrimaryModel:  "gpt-4o-transcribe",
			FallbackModel: "whisper-1",
			Timeout:       Duration(60 * time.Second),
		},
		LLM: LLMConfig{
			Model:       "gpt-3.5-turbo",
			MaxTokens:   450,
			Temperature: 0.2,
			Timeout:     Duration(30 * time.Second),
		},
		TTS: TTSConfig{
			Voice:    "en-US-AriaNeural",
			Language: "en",
			Timeout:  Duration(30 * time.Second),
		},
		Transcript: TranscriptConfig{
			Type: "file",
			File: TranscriptFileStore{
				Path: "data/transcripts/session.jsonl",
			},
			Redis: TranscriptRedisStore{
				Addr: "127.0.0.1:6379",
				Key:  "voicerag:transcripts",
			},
			SQLite: TranscriptSQLiteStore{
				DSN: "data/voicerag.db",
			},
		},
	}
}
