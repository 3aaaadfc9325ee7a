package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"animewatch/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	return setupCLITestEnvWithBind(t, "127.0.0.1:1")
}

// setupCLITestEnvWithBind points the CLI at a daemon API listening on bind.
func setupCLITestEnvWithBind(t *testing.T, bind string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("ANIMEWATCH_API_TOKEN", "")

	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\n\n[logging]\nlevel = \"error\"\n",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		bind,
	)
	configPath := testsupport.WriteFile(t, filepath.Join(homeDir, ".config", "animewatch", "config.toml"), content)

	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const sampleImportYAML = `anime:
  - title: Sousou no Frieren
    title_english: "Frieren: Beyond Journey's End"
    synonyms: [Frieren]
    anilist_id: 154587
    episodes: 28
  - title: Shingeki no Kyojin Season 2
    title_english: Attack on Titan Season 2
    anilist_id: 20958
  - title: Boku no Hero Academia 3
    title_english: My Hero Academia Season 3
`
