package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/pixgroup/internal/testutil"
	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"
)

// anImageWithRows writes the docstring as ASCII art: '#' is white, '.' is black.
func (testCtx *TestContext) anImageWithRows(name string, art *godog.DocString) error {
	var rows []string
	for _, line := range strings.Split(art.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	path := testCtx.Path(name)
	if err := testutil.SaveArt(path, rows...); err != nil {
		return fmt.Errorf("failed to write image %s: %w", name, err)
	}
	testCtx.TrackFile(path)
	return nil
}

// aFileWithContent writes a plain file, e.g. a configuration or a non-image.
func (testCtx *TestContext) aFileWithContent(name string, content *godog.DocString) error {
	path := testCtx.Path(name)
	if err := testutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(testCtx.Expand(content.Content)), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	testCtx.TrackFile(path)
	return nil
}

// theFileShouldExist checks for a file produced by the last command.
func (testCtx *TestContext) theFileShouldExist(name string) error {
	path := testCtx.Path(name)
	if !testutil.FileExists(path) {
		return fmt.Errorf("expected file %s to exist", path)
	}
	testCtx.LastFile = path
	return nil
}

// theFileShouldContain checks the content of the last referenced file.
func (testCtx *TestContext) theFileShouldContain(content string) error {
	if testCtx.LastFile == "" {
		return fmt.Errorf("no file referenced")
	}
	data, err := os.ReadFile(testCtx.LastFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", testCtx.LastFile, err)
	}
	if !strings.Contains(string(data), testCtx.Expand(content)) {
		return fmt.Errorf("expected %s to contain %q, got:\n%s", testCtx.LastFile, content, data)
	}
	return nil
}

// theImageShouldBeSized decodes the file and compares its dimensions.
func (testCtx *TestContext) theImageShouldBeSized(name string, width, height int) error {
	f, err := os.Open(testCtx.Path(name))
	if err != nil {
		return err
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("expected %dx%d image, got %dx%d", width, height, b.Dx(), b.Dy())
	}
	return nil
}

// RegisterImageSteps registers input and artifact step definitions.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an image "([^"]*)" with rows:$`, testCtx.anImageWithRows)
	sc.Step(`^a file "([^"]*)" with content:$`, testCtx.aFileWithContent)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the file should contain '([^']*)'$`, testCtx.theFileShouldContain)
	sc.Step(`^the image "([^"]*)" should be (\d+)x(\d+) pixels$`, testCtx.theImageShouldBeSized)
}
