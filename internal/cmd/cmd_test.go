package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/conclist/internal/config"
	"github.com/Iron-Ham/conclist/internal/stress"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// isolateConfig points the config search path at an empty directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "conclist" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "conclist")
	}

	expectedCmds := []string{"stress", "demo", "config", "logs"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range expectedCmds {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestStressCommand_JSON(t *testing.T) {
	isolateConfig(t)

	out, err := executeCommand(rootCmd, "stress",
		"--writers", "4", "--readers", "2", "--items", "3", "--rounds", "2",
		"--format", "json", "--color", "never")
	if err != nil {
		t.Fatalf("stress failed: %v\n%s", err, out)
	}

	var report stress.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if len(report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(report.Rounds))
	}
	for _, round := range report.Rounds {
		if round.Actual != 12 || round.Expected != 12 {
			t.Errorf("round %d: actual=%d expected=%d, want 12", round.Round, round.Actual, round.Expected)
		}
	}
}

func TestStressCommand_ObservableYAML(t *testing.T) {
	isolateConfig(t)

	out, err := executeCommand(rootCmd, "stress",
		"--writers", "3", "--readers", "1", "--items", "2", "--rounds", "1",
		"--observable", "--format", "yaml", "--color", "never")
	if err != nil {
		t.Fatalf("stress failed: %v\n%s", err, out)
	}

	var report struct {
		Observable bool `yaml:"observable"`
		Rounds     []struct {
			Actual    int `yaml:"actual"`
			AddEvents int `yaml:"add_events"`
		} `yaml:"rounds"`
	}
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a YAML report: %v\n%s", err, out)
	}
	if !report.Observable || len(report.Rounds) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Rounds[0].Actual != 6 || report.Rounds[0].AddEvents != 6 {
		t.Errorf("unexpected round: %+v", report.Rounds[0])
	}
}

func TestStressCommand_Text(t *testing.T) {
	isolateConfig(t)

	out, err := executeCommand(rootCmd, "stress",
		"--writers", "2", "--readers", "1", "--items", "2", "--rounds", "1",
		"--observable=false", "--format", "text", "--color", "never")
	if err != nil {
		t.Fatalf("stress failed: %v\n%s", err, out)
	}

	for _, want := range []string{"STRESS REPORT", "Round 1", "PASS", "4 / 4", "All rounds passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("--color never must not emit escape sequences")
	}
}

func TestStressCommand_InvalidConfig(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(rootCmd, "stress", "--writers", "0", "--format", "text")
	if err == nil {
		t.Fatal("expected validation failure for zero writers")
	}
	if !strings.Contains(err.Error(), "stress.writers") {
		t.Errorf("error should name the field: %v", err)
	}
	if !strings.Contains(err.Error(), "conclist config path") {
		t.Errorf("error should point at the config file: %v", err)
	}

	// Restore a valid value for later tests sharing the command.
	if _, err := executeCommand(rootCmd, "stress", "--writers", "2", "--readers", "1", "--items", "1", "--format", "json"); err != nil {
		t.Fatalf("stress failed: %v", err)
	}
}

func TestDemoCommand(t *testing.T) {
	isolateConfig(t)

	out, err := executeCommand(rootCmd, "demo")
	if err != nil {
		t.Fatalf("demo failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"new=[write]",
		"new=[review] index=1",
		"new=[test] old=[write] index=0",
		"changed  test.done",
		"old=[review]",
		"reset",
		"[test✓ deploy]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := strings.Count(out, "replace"); got != 1 {
		t.Errorf("setting the same task must not publish a second replace, got %d", got)
	}
	if !strings.Contains(out, "Listeners:") || !strings.HasSuffix(strings.TrimSpace(out), "0") {
		t.Errorf("expected zero listeners after clear:\n%s", out)
	}
}

func TestConfigShow(t *testing.T) {
	isolateConfig(t)

	out, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "# Config file: (none - using defaults)") {
		t.Errorf("expected defaults notice:\n%s", out)
	}

	var cfg config.Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("shown configuration is invalid: %v", errs)
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, "conclist", "config.yaml")

	if _, err := executeCommand(rootCmd, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not YAML: %v", err)
	}
	if cfg != *config.Default() {
		t.Errorf("config file = %+v, want defaults", cfg)
	}

	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, err := executeCommand(rootCmd, "config", "init", "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestLogsCommand(t *testing.T) {
	isolateConfig(t)
	logDir := t.TempDir()

	if _, err := executeCommand(rootCmd, "stress", "--log-dir", logDir,
		"--writers", "2", "--readers", "1", "--items", "1", "--rounds", "1", "--format", "json"); err != nil {
		t.Fatalf("stress failed: %v", err)
	}

	out, err := executeCommand(rootCmd, "logs", "--log-dir", logDir, "-n", "0", "--component", "stress", "--color", "never")
	if err != nil {
		t.Fatalf("logs failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "round started") || !strings.Contains(out, "round finished") {
		t.Errorf("expected round records:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "logs", "--log-dir", logDir, "--level", "error")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(out, "No matching log entries found.") {
		t.Errorf("a passing run should log no errors:\n%s", out)
	}
}

func TestLogFilter(t *testing.T) {
	entry := &logEntry{Level: "WARN", Msg: "event handler panicked", Component: "bus", RunID: "r1",
		Extra: map[string]any{"event_type": "collection.changed"}}

	tests := []struct {
		name   string
		filter logFilter
		want   bool
	}{
		{"no filter", logFilter{minLevel: -1}, true},
		{"level below", logFilter{minLevel: levelPriority("error")}, false},
		{"level at", logFilter{minLevel: levelPriority("warn")}, true},
		{"component match", logFilter{minLevel: -1, component: "bus"}, true},
		{"component mismatch", logFilter{minLevel: -1, component: "stress"}, false},
		{"run mismatch", logFilter{minLevel: -1, runID: "r2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.matches(entry); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny width", "hello", 2, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}

	t.Run("styled text", func(t *testing.T) {
		got := truncate("\x1b[31mhello world\x1b[0m", 8)
		if stripped := ansi.Strip(got); stripped != "hello..." {
			t.Errorf("visible text = %q, want %q", stripped, "hello...")
		}
	})
}

func TestRenderLine_TruncatesToWidth(t *testing.T) {
	p := newPalette(new(bytes.Buffer), false)
	line := `{"time":"2026-01-02T15:04:05Z","level":"INFO","msg":"round finished","component":"stress","extra":"` +
		strings.Repeat("x", 200) + `"}`

	rendered, ok := renderLine(line, logFilter{minLevel: -1, width: 60}, p)
	if !ok {
		t.Fatal("renderLine should accept a JSON record")
	}
	if w := ansi.StringWidth(rendered); w != 60 {
		t.Errorf("rendered width = %d, want 60", w)
	}
	if !strings.HasSuffix(rendered, "...") {
		t.Errorf("truncated line should end with ellipsis: %q", rendered)
	}
}
