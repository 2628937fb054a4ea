// ABOUTME: Integration tests for the healthrec CLI.
// ABOUTME: Builds the binary and exercises the full command workflow.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(projectRoot, "healthrec")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/healthrec")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}
	defer os.Remove(binary)

	// Point config and data at temp directories
	tmpDir := t.TempDir()
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
		"NO_COLOR=1",
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Add records of each kind
	output, err := run("add", "weight", "82.5", "--fat", "18.2")
	if err != nil {
		t.Fatalf("Failed to add weight: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added weight") {
		t.Errorf("Expected 'Added weight' in output, got: %s", output)
	}

	output, err = run("add", "bp", "120", "80", "65")
	if err != nil {
		t.Fatalf("Failed to add bp: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added blood pressure") {
		t.Errorf("Expected 'Added blood pressure' in output, got: %s", output)
	}

	output, err = run("add", "glucose", "5.4", "--meal", "before")
	if err != nil {
		t.Fatalf("Failed to add glucose: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added glucose") {
		t.Errorf("Expected 'Added glucose' in output, got: %s", output)
	}

	// List each kind
	output, err = run("list", "weight")
	if err != nil {
		t.Fatalf("Failed to list weights: %v\n%s", err, output)
	}
	if !strings.Contains(output, "82.5 kg") {
		t.Errorf("Expected weight entry in list output, got: %s", output)
	}

	output, err = run("list", "bp")
	if err != nil {
		t.Fatalf("Failed to list pressures: %v\n%s", err, output)
	}
	if !strings.Contains(output, "120/80 mmHg") {
		t.Errorf("Expected pressure entry in list output, got: %s", output)
	}

	output, err = run("list", "glucose", "--from", "2000-01-01")
	if err != nil {
		t.Fatalf("Failed to list glucoses: %v\n%s", err, output)
	}
	if !strings.Contains(output, "before") {
		t.Errorf("Expected glucose entry in list output, got: %s", output)
	}

	// Database info shows the mode and counts
	output, err = run("info")
	if err != nil {
		t.Fatalf("Failed to show info: %v\n%s", err, output)
	}
	if !strings.Contains(output, "read-write") {
		t.Errorf("Expected read-write mode in info output, got: %s", output)
	}

	// The created file passes the availability check
	dbPath := filepath.Join(tmpDir, "data", "healthrec", "health.db")
	output, err = run("check", dbPath)
	if err != nil {
		t.Fatalf("Failed to check database: %v\n%s", err, output)
	}
	if !strings.Contains(output, "read-write") {
		t.Errorf("Expected read-write in check output, got: %s", output)
	}

	// Sync without configuration reports a setup hint
	output, _ = run("sync")
	if !strings.Contains(output, "sync setup") {
		t.Errorf("Expected setup hint in sync output, got: %s", output)
	}
}
