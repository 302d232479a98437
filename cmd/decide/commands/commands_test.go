package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benvon/smart-decide/internal/models"
)

const exampleYAML = `goal: Finish the most important thing
time_minutes: 45
energy: 3
tasks:
  - title: Finish slides
    impact: 5
    effort: 3
    anxiety: 2
  - title: Reply to emails
    impact: 4
    effort: 2
    anxiety: 2
  - title: Plan next 30 min
    impact: 3
    effort: 1
    anxiety: 1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	t.Parallel()

	jsonRequest := `{"goal":"Finish the most important thing","time_minutes":45,"energy":3,"tasks":[` +
		`{"title":"Finish slides","impact":5,"effort":3,"anxiety":2},` +
		`{"title":"Reply to emails","impact":4,"effort":2,"anxiety":2},` +
		`{"title":"Plan next 30 min","impact":3,"effort":1,"anxiety":1}]}`

	tests := []struct {
		name  string
		file  func(t *testing.T) string
		stdin string
	}{
		{name: "yaml file", file: func(t *testing.T) string { return writeFile(t, "req.yaml", exampleYAML) }},
		{name: "json file", file: func(t *testing.T) string { return writeFile(t, "req.json", jsonRequest) }},
		{name: "stdin", file: func(t *testing.T) string { return "-" }, stdin: exampleYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := execute(t, tt.stdin, "run", "-f", tt.file(t))
			if err != nil {
				t.Fatalf("run error = %v", err)
			}

			var rec models.Recommendation
			if err := json.Unmarshal([]byte(stdout), &rec); err != nil {
				t.Fatalf("Expected JSON output, got %q: %v", stdout, err)
			}
			if rec.SelectedTaskTitle != "Plan next 30 min" {
				t.Errorf("Expected 'Plan next 30 min', got %q", rec.SelectedTaskTitle)
			}
			if rec.Confidence != models.ConfidenceLow {
				t.Errorf("Expected low confidence, got %s", rec.Confidence)
			}
		})
	}
}

func TestRun_Scores(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "run", "-f", writeFile(t, "req.yaml", exampleYAML), "--scores")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	lines := strings.Split(stdout, "\n")
	if !strings.HasPrefix(lines[0], "RANK") {
		t.Fatalf("Expected ranking header first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "Plan next 30 min") || !strings.Contains(lines[1], "4.045") {
		t.Errorf("Expected winner with score 4.045 first, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "Finish slides") || !strings.Contains(lines[3], "Reply to emails") {
		t.Errorf("Expected ranking order slides then emails, got %q / %q", lines[2], lines[3])
	}
}

func TestRun_NowMovesDeadlineIntoRange(t *testing.T) {
	t.Parallel()

	request := strings.Replace(exampleYAML, "  - title: Reply to emails\n", "  - title: Reply to emails\n    deadline: \"2024-03-16\"\n", 1)
	path := writeFile(t, "req.yaml", request)

	stdout, _, err := execute(t, "", "run", "-f", path, "--now", "2024-03-15T09:00:00Z")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	var rec models.Recommendation
	if err := json.Unmarshal([]byte(stdout), &rec); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if rec.SelectedTaskTitle != "Reply to emails" {
		t.Errorf("Expected the near deadline to win, got %q", rec.SelectedTaskTitle)
	}
	if !strings.Contains(rec.Rationale, "relevant deadline") {
		t.Errorf("Expected deadline clause in rationale, got %q", rec.Rationale)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       func(t *testing.T) []string
		wantStderr string
	}{
		{
			name: "missing file flag",
			args: func(t *testing.T) []string { return []string{"run"} },
		},
		{
			name: "file does not exist",
			args: func(t *testing.T) []string { return []string{"run", "-f", filepath.Join(t.TempDir(), "none.yaml")} },
		},
		{
			name: "bad now",
			args: func(t *testing.T) []string {
				return []string{"run", "-f", writeFile(t, "req.yaml", exampleYAML), "--now", "tomorrow"}
			},
		},
		{
			name: "invalid request",
			args: func(t *testing.T) []string {
				return []string{"run", "-f", writeFile(t, "req.yaml", strings.Replace(exampleYAML, "energy: 3", "energy: 9", 1))}
			},
			wantStderr: "energy must be at most 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr, err := execute(t, "", tt.args(t)...)
			if err == nil {
				t.Fatal("Expected error")
			}
			if stdout != "" {
				t.Errorf("Expected no stdout on failure, got %q", stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("Expected stderr to contain %q, got %q", tt.wantStderr, stderr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "validate", "-f", writeFile(t, "req.yaml", exampleYAML))
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if stdout != "ok: 3 tasks\n" {
		t.Errorf("Expected 'ok: 3 tasks', got %q", stdout)
	}

	bad := strings.Replace(exampleYAML, "impact: 4", "impact: 0", 1)
	_, stderr, err := execute(t, "", "validate", "-f", writeFile(t, "bad.yaml", bad))
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(stderr, "tasks[1].impact is required") {
		t.Errorf("Expected field path in stderr, got %q", stderr)
	}
}
