package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init",
		"transcript:init-store",
		"eventbus:init",
		"pipeline:init",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestExecuteInitSteps(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf(`
log:
  log_level: debug
  log_dir: %q
audio:
  temp_dir: %q
transcript:
  type: file
  file:
    path: %q
`,
		filepath.Join(dir, "logs"),
		dir,
		filepath.Join(dir, "transcripts.jsonl"),
	)
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VOICERAG_CONFIG", cfgPath)
	t.Setenv("OPENAI_API_KEY", "test-key")

	state := &appState{}
	if err := executeInitSteps(context.Background(), InitGraph(), state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	t.Cleanup(func() {
		state.pool.Stop()
		state.store.Close()
		state.logger.Close()
	})

	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.store == nil {
		t.Fatal("transcript store is nil after init")
	}
	if state.bus == nil {
		t.Fatal("event bus is nil after init")
	}
	if state.pipeline == nil {
		t.Fatal("pipeline is nil after init")
	}
	if state.config.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", state.config.Log.Level)
	}
}

func TestExecuteInitSteps_DependencyOrder(t *testing.T) {
	steps := []initStep{
		{
			ID:        "second",
			DependsOn: []string{"first"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Fatal("expected unsatisfied dependency error")
	}
}
