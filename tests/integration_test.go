package tests

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// binaryName returns the appropriate binary name for the current OS
func binaryName() string {
	if runtime.GOOS == "windows" {
		return "zenbook_test.exe"
	}
	return "zenbook_test"
}

// buildTestBinary builds the test binary and returns a cleanup function
func buildTestBinary(t *testing.T) (string, func()) {
	t.Helper()
	binName := binaryName()
	buildCmd := exec.Command("go", "build", "-o", binName, "../cmd/zenbook")
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("failed to build binary: %v", err)
	}
	return binName, func() { os.Remove(binName) }
}

// isolatedEnv points HOME at a temporary directory and clears the remote
// store credentials so tests never touch a real config or table.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return append(os.Environ(),
		"HOME="+home,
		"USERPROFILE="+home,
		"SUPABASE_URL=",
		"SUPABASE_ANON_KEY=",
		"ZENBOOK_PIN=",
	)
}

func run(t *testing.T, binPath string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command("./"+binPath, args...)
	cmd.Env = env
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func TestReadCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()
	env := isolatedEnv(t)

	sampleFile := filepath.Join("fixtures", "sample.zen")

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantOutput []string
	}{
		{
			name:       "text",
			args:       []string{"read", sampleFile},
			wantOutput: []string{"THE FIRST BREATH", "Ram Dass", "Tip"},
		},
		{
			name:       "markdown",
			args:       []string{"read", sampleFile, "--format", "markdown"},
			wantOutput: []string{"## The First Breath", "**four**", "> — Ram Dass", "> **Tip:**"},
		},
		{
			name:       "html",
			args:       []string{"read", sampleFile, "-f", "html"},
			wantOutput: []string{`<article class="chapter">`, "<strong>four</strong>", `<aside class="tip">`},
		},
		{
			name:       "yaml chapter",
			args:       []string{"read", filepath.Join("fixtures", "sample.yaml"), "-f", "markdown"},
			wantOutput: []string{"# ☀️ Morning Light", "_Begin slowly_", "---"},
		},
		{
			name:    "unknown format",
			args:    []string{"read", sampleFile, "--format", "pdf"},
			wantErr: true,
		},
		{
			name:    "unknown chapter id",
			args:    []string{"read", "admin_0", "-q"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := run(t, binPath, env, tc.args...)

			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v\noutput: %s", err, output)
			}

			for _, want := range tc.wantOutput {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestPreviewCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()
	env := isolatedEnv(t)

	sampleFile := filepath.Join("fixtures", "sample.zen")

	t.Run("json", func(t *testing.T) {
		output, err := run(t, binPath, env, "preview", sampleFile)
		if err != nil {
			t.Fatalf("unexpected error: %v\noutput: %s", err, output)
		}
		for _, want := range []string{`"kind": "heading"`, `"kind": "tip"`, `"author": "Ram Dass"`} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q, got: %s", want, output)
			}
		}
	})

	t.Run("text", func(t *testing.T) {
		output, err := run(t, binPath, env, "preview", sampleFile, "--format", "text")
		if err != nil {
			t.Fatalf("unexpected error: %v\noutput: %s", err, output)
		}
		if !strings.Contains(output, "Blocks: 7 (headings 1, quotes 1, tips 1, dividers 1)") {
			t.Errorf("unexpected summary: %s", output)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := run(t, binPath, env, "preview", "nonexistent.zen"); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestImportCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()
	env := isolatedEnv(t)

	sampleFile := filepath.Join("fixtures", "sample.md")

	output, err := run(t, binPath, env, "import", sampleFile, "-q")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, output)
	}
	for _, want := range []string{
		"Let the day **settle**.",
		"> Rest is not idleness. | John Lubbock",
		"[tip]\nLights off at ten.\n[/tip]",
		"• Stretch",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}

	outPath := filepath.Join(t.TempDir(), "evening.yaml")
	if output, err := run(t, binPath, env, "import", sampleFile, "-o", outPath); err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, output)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "title: Evening") {
		t.Errorf("chapter file should contain the title, got: %s", data)
	}
}

func TestFormatsCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	output, err := run(t, binPath, isolatedEnv(t), "formats")
	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}

	for _, f := range []string{"text", "markdown", "html", "json"} {
		if !strings.Contains(output, f) {
			t.Errorf("output should contain format %q, got: %s", f, output)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	output, err := run(t, binPath, isolatedEnv(t), "version")
	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}

	if !strings.Contains(output, "zenbook") {
		t.Errorf("output should contain 'zenbook', got: %s", output)
	}
}

func TestConfigCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()
	env := isolatedEnv(t)

	t.Run("config show", func(t *testing.T) {
		output, err := run(t, binPath, env, "config", "show")
		if err != nil {
			t.Errorf("unexpected error: %v\noutput: %s", err, output)
		}

		if !strings.Contains(output, "backend: auto") {
			t.Errorf("output should contain 'backend: auto', got: %s", output)
		}
	})

	t.Run("config path", func(t *testing.T) {
		output, err := run(t, binPath, env, "config", "path")
		if err != nil {
			t.Errorf("unexpected error: %v\noutput: %s", err, output)
		}

		if !strings.Contains(output, "config.yaml") {
			t.Errorf("output should contain 'config.yaml', got: %s", output)
		}
	})
}

func TestHelpCommand(t *testing.T) {
	binPath, cleanup := buildTestBinary(t)
	defer cleanup()

	output, err := run(t, binPath, isolatedEnv(t), "--help")
	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}

	expectedStrings := []string{"zenbook", "read", "preview", "chapter", "import", "config"}
	for _, s := range expectedStrings {
		if !strings.Contains(output, s) {
			t.Errorf("output should contain %q, got: %s", s, output)
		}
	}
}
