package store

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"

	"voicerag-server-go/internal/platform/config"
)

func TestFileStore_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts", "session.jsonl")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	ctx := context.Background()
	records := []Record{
		{Question: "what is RAG?", Answer: "Retrieval augmented generation."},
		{Question: "and VAD?", Answer: "Voice activity detection."},
	}
	for _, rec := range records {
		if err := s.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var got []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := sonic.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		got = append(got, rec)
	}

	if len(got) != len(records) {
		t.Fatalf("lines = %d, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i].Question != records[i].Question || got[i].Answer != records[i].Answer {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
		if got[i].CreatedAt.IsZero() {
			t.Errorf("record %d missing timestamp", i)
		}
	}
}

func TestRedisStore_AppendsToList(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(RedisOptions{Addr: mr.Addr(), Key: "test:transcripts"})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Append(ctx, Record{Question: "q1", Answer: "a1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, Record{Question: "q2", Answer: "a2"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	items, err := mr.List("test:transcripts")
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("list length = %d, want 2", len(items))
	}

	var rec Record
	if err := sonic.Unmarshal([]byte(items[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Question != "q1" || rec.Answer != "a1" {
		t.Errorf("first record = %+v", rec)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rec := Record{
		Question: "what is RAG?",
		Answer:   "Retrieval augmented generation.",
		Metadata: map[string]string{"request_id": "req-1"},
	}
	if err := s.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if got[0].Question != rec.Question || got[0].Answer != rec.Answer {
		t.Errorf("record = %+v", got[0])
	}
	if got[0].Metadata["request_id"] != "req-1" {
		t.Errorf("metadata = %v", got[0].Metadata)
	}
}

func TestFactory(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		s, err := New(config.TranscriptConfig{
			Type: "file",
			File: config.TranscriptFileStore{Path: filepath.Join(t.TempDir(), "log.jsonl")},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.Close()
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := New(config.TranscriptConfig{Type: "carrier-pigeon"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
