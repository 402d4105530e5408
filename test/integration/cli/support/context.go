package support

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/pixgroup/cmd/pixgroup/cmd"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastStderr    string
	LastError     error
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	TempDir string

	// Test artifacts
	LastFile     string
	CreatedFiles []string
}

// NewTestContext creates a new test context with its own temporary directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "pixgroup-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{TempDir: tempDir}, nil
}

// Cleanup removes the temporary directory and everything created in it.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// Path resolves a scenario path. Relative paths live in the temp directory.
func (testCtx *TestContext) Path(name string) string {
	name = testCtx.Expand(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}

// Expand replaces the {tmp} placeholder with the scenario's temp directory.
func (testCtx *TestContext) Expand(s string) string {
	return strings.ReplaceAll(s, "{tmp}", testCtx.TempDir)
}

// TrackFile records a file created by a step.
func (testCtx *TestContext) TrackFile(path string) {
	testCtx.LastFile = path
	testCtx.CreatedFiles = append(testCtx.CreatedFiles, path)
}

// RunCommand executes a command line against a fresh command tree. The
// leading program name is optional.
func (testCtx *TestContext) RunCommand(line string) {
	line = testCtx.Expand(line)
	args := strings.Fields(line)
	if len(args) > 0 && args[0] == "pixgroup" {
		args = args[1:]
	}

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	testCtx.LastCommand = line
	testCtx.LastStartTime = time.Now()
	testCtx.LastError = root.Execute()
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
}
