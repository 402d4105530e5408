package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/pixgroup/internal/report"
	"github.com/MeKo-Tech/pixgroup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoBlobs = []string{
	"##....",
	"##..#.",
	"....#.",
	"......",
}

func TestBlobsCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "two.png", twoBlobs...)

	out, _, err := execute(t, "blobs", img, "--format", "json")
	require.NoError(t, err)

	var decoded struct {
		Images []report.BlobResult `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Images, 1)
	res := decoded.Images[0]
	assert.Equal(t, img, res.File)
	assert.Equal(t, 6, res.Width)
	require.Len(t, res.Blobs, 2)
	assert.Equal(t, 4, res.Blobs[0].Size)
	assert.Equal(t, 2, res.Blobs[1].Size)
	assert.Len(t, res.Blobs[1].Points, 2)
}

func TestBlobsCommand_SizeFilterAndText(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "two.png", twoBlobs...)

	out, _, err := execute(t, "blobs", img, "--min-size", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "blobs: 1")
	assert.Contains(t, out, "size=4")
}

func TestBlobsCommand_LowPolarity(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "ring.png",
		"#####",
		"#...#",
		"#####",
	)

	out, _, err := execute(t, "blobs", img, "--polarity", "low", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], img+",0,3,1,1,3,1,"))
	assert.True(t, strings.HasSuffix(lines[1], ",low"))
}

func TestBlobsCommand_DirectoryOrderAndOutputFile(t *testing.T) {
	dir := t.TempDir()
	b := testutil.WriteArt(t, dir, "b.png", "#.#")
	a := testutil.WriteArt(t, dir, "a.png", "##.")
	outFile := filepath.Join(t.TempDir(), "blobs.csv")

	out, _, err := execute(t, "blobs", dir, "--format", "csv", "--output", outFile, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Results written to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], a+",0,2,"))
	assert.True(t, strings.HasPrefix(lines[2], b+",0,1,"))
	assert.True(t, strings.HasPrefix(lines[3], b+",1,1,"))
}

func TestBlobsCommand_Mask(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "two.png", twoBlobs...)
	mask := testutil.WriteArt(t, dir, "mask.png",
		"###...",
		"###...",
	)

	out, _, err := execute(t, "blobs", img, "--mask", mask)
	require.NoError(t, err)
	assert.Contains(t, out, "blobs: 1")
	assert.Contains(t, out, "size=4")
}

func TestBlobsCommand_OverlayAndMetrics(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "two.png", twoBlobs...)
	overlayDir := filepath.Join(t.TempDir(), "overlays")
	metricsFile := filepath.Join(t.TempDir(), "pixgroup.prom")

	_, _, err := execute(t, "blobs", img, "--overlay-dir", overlayDir, "--blob-color", "",
		"--metrics-textfile", metricsFile)
	require.NoError(t, err)

	ov := testutil.LoadImage(t, filepath.Join(overlayDir, "two_blobs.png"))
	assert.Equal(t, 6, ov.Bounds().Dx())

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pixgroup_labeling_calls_total{status="success"} 1`)
	assert.Contains(t, string(data), `pixgroup_labeling_blobs_total{outcome="kept"} 2`)
}

func TestBlobsCommand_Logging(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "two.png", twoBlobs...)

	_, logs, err := execute(t, "blobs", img, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, logs, `"msg":"Image processed"`)
	assert.Contains(t, logs, `"msg":"Deriving blobs"`)
}

func TestBlobsCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	img := testutil.WriteArt(t, dir, "two.png", twoBlobs...)
	bigMask := testutil.WriteArt(t, dir, "big.png", "#######")
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("not an image"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", []string{"blobs"}, "requires at least 1 arg"},
		{"missing file", []string{"blobs", filepath.Join(dir, "none.png")}, "cannot access"},
		{"empty directory", []string{"blobs", t.TempDir()}, "no input images found"},
		{"bad connectivity", []string{"blobs", img, "--connectivity", "6"}, "labeling.connectivity"},
		{"bad format", []string{"blobs", img, "--format", "xml"}, "invalid output format"},
		{"24-bit depth", []string{"blobs", img, "--depth", "24"}, "unsupported pixel depth"},
		{"mask too large", []string{"blobs", img, "--mask", bigMask}, "mask larger than source"},
		{"unsupported file", []string{"blobs", notes}, "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
