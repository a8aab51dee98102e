package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rastercat/internal/store"
	"github.com/roach88/rastercat/internal/testutil"
)

// seedDatabase creates a catalog database on disk with the reference
// hierarchy and images, and returns its path.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	testutil.SeedHierarchy(t, s)
	testutil.SeedImages(t, s)
	require.NoError(t, s.Close())
	return path
}

// runCommand executes the CLI against a buffer and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTreeCommand_Text(t *testing.T) {
	db := seedDatabase(t)

	out, err := runCommand(t, "tree", "--db", db)
	require.NoError(t, err)

	assert.Contains(t, out, "SST")
	assert.Contains(t, out, "AVHRR")
	assert.Contains(t, out, "SST Global")
	assert.Contains(t, out, "sub1 (ascending passes) [fmt-png]")
}

func TestTreeCommand_JSON(t *testing.T) {
	db := seedDatabase(t)

	out, err := runCommand(t, "tree", "--db", db, "--format", "json", "--depth", "series")
	require.NoError(t, err)

	var resp struct {
		Status  string    `json:"status"`
		Data    *TreeNode `json:"data"`
		TraceID string    `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "catalog", resp.Data.Identifier)

	// Series depth: leaves are series, no sub-series below them.
	require.Len(t, resp.Data.Children, 2)
	sst := resp.Data.Children[1]
	assert.Equal(t, "SST", sst.Identifier)
	series := sst.Children[0].Children[0]
	assert.Equal(t, "SST Global", series.Identifier)
	assert.Empty(t, series.Children)
}

func TestTreeCommand_InvalidDepth(t *testing.T) {
	db := seedDatabase(t)

	_, err := runCommand(t, "tree", "--db", db, "--depth", "bands")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExtentCommand_Text(t *testing.T) {
	db := seedDatabase(t)

	out, err := runCommand(t, "extent", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "x: [-180, 180]")
	assert.Contains(t, out, "y: [-90, 90]")
	assert.Contains(t, out, "2004-06-01T00:00:00Z")
	assert.Contains(t, out, "2004-06-03T00:00:00Z")
}

func TestExtentCommand_NoCoverage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := runCommand(t, "extent", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no coverage")
}

func TestExtentCommand_NoCoverageJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := runCommand(t, "extent", "--db", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ExtentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Defined)
	assert.Nil(t, resp.Data.XMin)
}

func TestRegisterCommand_ThenExtentGrows(t *testing.T) {
	db := seedDatabase(t)

	out, err := runCommand(t, "register", "sst-20040610.png",
		"--db", db, "--subseries", "sub1",
		"--start", "2004-06-10T00:00:00Z", "--end", "2004-06-11T00:00:00Z",
		"--xmin", "-180", "--xmax", "180", "--ymin", "-90", "--ymax", "90",
		"--width", "4096", "--height", "2048")
	require.NoError(t, err)
	assert.Contains(t, out, "registered sst-20040610.png under sub1")

	out, err = runCommand(t, "extent", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2004-06-11T00:00:00Z")
}

func TestRegisterCommand_ReusesGeometry(t *testing.T) {
	db := seedDatabase(t)

	out, err := runCommand(t, "register", "x.png",
		"--db", db, "--subseries", "sub1",
		"--start", "2004-07-01T00:00:00Z", "--end", "2004-07-02T00:00:00Z",
		"--xmin", "-180", "--xmax", "180", "--ymin", "-90", "--ymax", "90",
		"--width", "4096", "--height", "2048",
		"--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data RegisterResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	// The seeded geometry has the same 6-tuple, so no new row is created.
	assert.Equal(t, int64(1), resp.Data.Geometry)
}

func TestRegisterCommand_InvertedExtent(t *testing.T) {
	db := seedDatabase(t)

	_, err := runCommand(t, "register", "x.png",
		"--db", db, "--subseries", "sub1",
		"--start", "2004-07-01T00:00:00Z", "--end", "2004-07-02T00:00:00Z",
		"--xmin", "10", "--xmax", "-10", "--ymin", "0", "--ymax", "1",
		"--width", "16", "--height", "16")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRegisterCommand_EndBeforeStart(t *testing.T) {
	db := seedDatabase(t)

	_, err := runCommand(t, "register", "x.png",
		"--db", db, "--subseries", "sub1",
		"--start", "2004-07-02T00:00:00Z", "--end", "2004-07-01T00:00:00Z",
		"--xmin", "0", "--xmax", "1", "--ymin", "0", "--ymax", "1",
		"--width", "16", "--height", "16")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_Defaults(t *testing.T) {
	out, err := runCommand(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Config valid")
}

func TestValidateCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Not/AZone\n"), 0o644))

	_, err := runCommand(t, "validate", "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateCommand_BadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Not/AZone\n"), 0o644))

	out, err := runCommand(t, "validate", "--config", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotEmpty(t, resp.Data.Errors)
	assert.Contains(t, resp.Data.Errors[0], "timezone")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CONFIG", resp.Error.Code)
}

func TestValidateCommand_UnreadableConfigIsCommandError(t *testing.T) {
	_, err := runCommand(t, "validate", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
