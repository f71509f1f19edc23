package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const signalsCSV = `time,engine_speed [rpm],coolant [degC]
0.0,800,20
0.1,900,21
0.2,1000,22
0.3,1100,23
`

const framesCSV = `time,bus,id,data
0.0,1,100,1027FF0000000000
0.1,1,0x64,2003000000000000
`

const engineDBC = `BO_ 100 EngineData: 8 ECU1
 SG_ EngineSpeed : 0|16@1+ (0.125,0) [0|8031.875] "rpm" ECU2
 SG_ CoolantTemp : 16|8@1- (1,-40) [-40|215] "degC" ECU2
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	storePath  string
}

// setupCLITestEnv writes a config rooted in a temp dir and imports the sample
// signals and frames into a store.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "mdfview.toml"),
		storePath:  filepath.Join(base, "drive.sqlite"),
	}
	cfg := fmt.Sprintf("[paths]\nwork_dir = %q\nlog_dir = %q\n\n[convert]\nmin_free_mib = 0\n",
		filepath.Join(base, "work"), filepath.Join(base, "logs"))
	writeTestFile(t, env.configPath, cfg)
	signals := writeTestFile(t, filepath.Join(base, "signals.csv"), signalsCSV)
	frames := writeTestFile(t, filepath.Join(base, "frames.csv"), framesCSV)

	if _, _, err := runCLI(t, "import", signals, env.storePath, "--frames", frames); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...)...)
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", substr, output)
	}
}
