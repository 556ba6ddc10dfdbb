package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	platformerrors "voicerag-server-go/internal/platform/errors"
)

// TranscriptRow is the gorm model of one stored pair.
type TranscriptRow struct {
	ID        uint   `gorm:"primarykey"`
	Question  string `gorm:"not null"`
	Answer    string `gorm:"not null"`
	CreatedAt time.Time
	Metadata  datatypes.JSON
}

func (TranscriptRow) TableName() string {
	return "transcripts"
}

// SQLiteStore appends records to a sqlite table.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, ":memory:") {
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, platformerrors.Wrap(platformerrors.KindStorage, "sqlite store",
					"failed to create database directory", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "sqlite store",
			"failed to open database", err)
	}

	if err := db.AutoMigrate(&TranscriptRow{}); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "sqlite store",
			"failed to migrate transcripts table", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	row := TranscriptRow{
		Question:  rec.Question,
		Answer:    rec.Answer,
		CreatedAt: rec.CreatedAt,
	}
	if len(rec.Metadata) > 0 {
		payload, err := sonic.Marshal(rec.Metadata)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindStorage, "sqlite store",
				"failed to encode metadata", err)
		}
		row.Metadata = datatypes.JSON(payload)
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "sqlite store",
			"failed to append record", err)
	}
	return nil
}

// Recent returns up to limit most recent records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	var rows []TranscriptRow
	if err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "sqlite store",
			"failed to query records", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			Question:  row.Question,
			Answer:    row.Answer,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Metadata) > 0 {
			_ = sonic.Unmarshal(row.Metadata, &rec.Metadata)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
