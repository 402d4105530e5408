package testutil

import (
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/pixgroup/internal/pixbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArt(t *testing.T) {
	buf := Art(t, pixbuf.Depth8,
		"#.5",
		"..#",
	)
	assert.Equal(t, 3, buf.Width())
	assert.Equal(t, 2, buf.Height())
	assert.Equal(t, uint32(255), buf.At(0, 0))
	assert.Equal(t, uint32(0), buf.At(1, 0))
	assert.Equal(t, uint32(140), buf.At(2, 0))

	one := Art(t, pixbuf.Depth1, "#.")
	assert.Equal(t, uint32(1), one.At(0, 0))

	rgb := Art(t, pixbuf.Depth24, "#")
	assert.Equal(t, uint32(0xffffff), rgb.At(0, 0))
}

func TestParseArt_Errors(t *testing.T) {
	_, err := ParseArt(pixbuf.Depth8, "##", "#")
	require.Error(t, err)

	_, err = ParseArt(pixbuf.Depth8, "#x")
	require.Error(t, err)
}

func TestRenderArt_RoundTrip(t *testing.T) {
	rows := []string{
		".#.",
		"###",
		".#.",
	}
	buf := Art(t, pixbuf.Depth8, rows...)
	assert.Equal(t, ".#.\n###\n.#.\n", RenderArt(buf, pixbuf.ColorHigh, 128))
	assert.Equal(t, "#.#\n...\n#.#\n", RenderArt(buf, pixbuf.ColorLow, 128))
}

func TestWriteArtAndLoad(t *testing.T) {
	dir := CreateTempDir(t)
	path := WriteArt(t, dir, "shape.png", "#.", ".#")
	assert.Equal(t, filepath.Join(dir, "shape.png"), path)
	assert.True(t, FileExists(path))

	img := LoadImage(t, path)
	assert.Equal(t, 2, img.Bounds().Dx())
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestSaveArt(t *testing.T) {
	path := filepath.Join(CreateTempDir(t), "nested", "a.png")
	require.NoError(t, SaveArt(path, "#", "."))
	assert.True(t, FileExists(path))

	require.Error(t, SaveArt(path, "#?"))
}
