package store

import (
	"fmt"

	"voicerag-server-go/internal/platform/config"
	platformerrors "voicerag-server-go/internal/platform/errors"
)

// New builds the transcript store selected by configuration.
func New(cfg config.TranscriptConfig) (Store, error) {
	switch cfg.Type {
	case "file", "":
		return NewFileStore(cfg.File.Path)
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite.DSN)
	default:
		return nil, platformerrors.New(platformerrors.KindStorage, "store factory",
			fmt.Sprintf("unknown transcript store type %q", cfg.Type))
	}
}
