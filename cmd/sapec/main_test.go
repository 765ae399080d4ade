package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"sapec/internal/codec"
)

// runCLI executes the root command with fresh flag values and returns
// stdout, stderr and the command error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, c := range append(rootCmd.Commands(), rootCmd) {
		resetFlags(c.Flags())
		resetFlags(c.PersistentFlags())
	}
	envOut = ""
	versionFormat = "pretty"
	appEnv = nil

	t.Setenv("SAPEC_COLOR", "off")
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func TestEnv_TextReport(t *testing.T) {
	stdout, stderr, err := runCLI(t, "env", "--verbose", "--info")
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if !strings.Contains(stdout, `tool = "sapec"`) {
		t.Fatalf("stdout missing tool line:\n%s", stdout)
	}
	if !strings.Contains(stdout, `modes = ["runnable", "verbose", "info"]`) {
		t.Fatalf("stdout missing modes:\n%s", stdout)
	}
	if !strings.Contains(stderr, "modes: runnable|verbose|info") {
		t.Fatalf("verbose trace missing:\n%s", stderr)
	}
	if !strings.Contains(stderr, "text output") {
		t.Fatalf("info line missing:\n%s", stderr)
	}
}

func TestEnv_BinaryFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "env.mp")
	_, _, err := runCLI(t, "env", "--binary", "--mode", "sapwin", "--memory-limit", "4096", "--out", out)
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	var report envReport
	if err := codec.ReadFile(out, codec.Binary, &report); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Join(report.Modes, ",") != "runnable,sapwin,binary" {
		t.Fatalf("modes = %v", report.Modes)
	}
	if report.MemoryLimit != 4096 {
		t.Fatalf("memory limit = %d", report.MemoryLimit)
	}
	if report.Color != "off" {
		t.Fatalf("color = %q", report.Color)
	}
}

func TestEnv_RejectsManagedModes(t *testing.T) {
	if _, _, err := runCLI(t, "env", "--mode", "runnable"); err == nil {
		t.Fatal("expected error for --mode runnable")
	}
	if _, _, err := runCLI(t, "env", "--mode", "warp"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRoot_PrintsHelp(t *testing.T) {
	stdout, _, err := runCLI(t)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Fatalf("help not printed:\n%s", stdout)
	}
	if !appEnv.Flags.Help() || appEnv.Ready() {
		t.Fatalf("help request not recorded: %s", appEnv.Flags)
	}
}

func TestVersion_JSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if payload.Tool != "sapec" || payload.GitCommit != "unknown" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestVersion_BadFormat(t *testing.T) {
	if _, _, err := runCLI(t, "version", "--format", "xml"); err == nil {
		t.Fatal("expected error for xml format")
	}
}
