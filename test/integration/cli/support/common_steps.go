package support

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"gopkg.in/yaml.v3"
)

// iRunCommand executes a pixgroup command line in-process.
func (testCtx *TestContext) iRunCommand(line string) error {
	testCtx.RunCommand(line)
	return nil
}

// theCommandShouldSucceed verifies the last command returned no error.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("command %q failed: %w\nstderr:\n%s", testCtx.LastCommand, testCtx.LastError, testCtx.LastStderr)
	}
	return nil
}

// theCommandShouldFail verifies the last command returned an error.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("command %q succeeded unexpectedly, output:\n%s", testCtx.LastCommand, testCtx.LastOutput)
	}
	return nil
}

// theErrorShouldMention checks the error message of the last command.
func (testCtx *TestContext) theErrorShouldMention(text string) error {
	if testCtx.LastError == nil {
		return errors.New("no error was returned")
	}
	if !strings.Contains(strings.ToLower(testCtx.LastError.Error()), strings.ToLower(text)) {
		return fmt.Errorf("expected error to mention %q, got: %v", text, testCtx.LastError)
	}
	return nil
}

// theOutputShouldContain checks standard output.
func (testCtx *TestContext) theOutputShouldContain(text string) error {
	text = testCtx.Expand(text)
	if !strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldNotContain checks standard output.
func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	text = testCtx.Expand(text)
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("expected output not to contain %q, got:\n%s", text, testCtx.LastOutput)
	}
	return nil
}

// theLogShouldContain checks the structured log written to standard error.
func (testCtx *TestContext) theLogShouldContain(text string) error {
	if !strings.Contains(testCtx.LastStderr, text) {
		return fmt.Errorf("expected log to contain %q, got:\n%s", text, testCtx.LastStderr)
	}
	return nil
}

type blobsDocument struct {
	Images []struct {
		File  string `json:"file"`
		Blobs []struct {
			Index int `json:"index"`
			Size  int `json:"size"`
		} `json:"blobs"`
	} `json:"images"`
}

func (testCtx *TestContext) parseBlobs() (*blobsDocument, error) {
	var doc blobsDocument
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &doc); err != nil {
		return nil, fmt.Errorf("output is not valid JSON: %w\n%s", err, testCtx.LastOutput)
	}
	return &doc, nil
}

// theOutputShouldBeValidJSON verifies the output parses as JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	var v any
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &v); err != nil {
		return fmt.Errorf("output is not valid JSON: %w", err)
	}
	return nil
}

// theOutputShouldBeValidYAML verifies the output parses as YAML.
func (testCtx *TestContext) theOutputShouldBeValidYAML() error {
	var v any
	if err := yaml.Unmarshal([]byte(testCtx.LastOutput), &v); err != nil {
		return fmt.Errorf("output is not valid YAML: %w", err)
	}
	return nil
}

// theJSONShouldReportBlobs checks the number of blobs of the only image.
func (testCtx *TestContext) theJSONShouldReportBlobs(count int) error {
	doc, err := testCtx.parseBlobs()
	if err != nil {
		return err
	}
	if len(doc.Images) != 1 {
		return fmt.Errorf("expected one image, got %d", len(doc.Images))
	}
	if got := len(doc.Images[0].Blobs); got != count {
		return fmt.Errorf("expected %d blobs, got %d", count, got)
	}
	return nil
}

// theBlobSizesShouldBe compares the sizes of the only image's blobs in order.
func (testCtx *TestContext) theBlobSizesShouldBe(list string) error {
	doc, err := testCtx.parseBlobs()
	if err != nil {
		return err
	}
	if len(doc.Images) != 1 {
		return fmt.Errorf("expected one image, got %d", len(doc.Images))
	}
	got := make([]string, 0, len(doc.Images[0].Blobs))
	for _, b := range doc.Images[0].Blobs {
		got = append(got, fmt.Sprint(b.Size))
	}
	if want := strings.Join(strings.Fields(strings.ReplaceAll(list, ",", " ")), ","); strings.Join(got, ",") != want {
		return fmt.Errorf("expected blob sizes %s, got %s", want, strings.Join(got, ","))
	}
	return nil
}

// theCSVShouldHaveRows counts CSV records after the header.
func (testCtx *TestContext) theCSVShouldHaveRows(count int) error {
	records, err := csv.NewReader(bytes.NewBufferString(testCtx.LastOutput)).ReadAll()
	if err != nil {
		return fmt.Errorf("output is not valid CSV: %w", err)
	}
	if len(records) == 0 {
		return errors.New("CSV output has no header")
	}
	if got := len(records) - 1; got != count {
		return fmt.Errorf("expected %d CSV rows, got %d", count, got)
	}
	return nil
}

// RegisterCommonSteps registers command and output step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should contain '([^']*)'$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the log should contain "([^"]*)"$`, testCtx.theLogShouldContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the output should be valid YAML$`, testCtx.theOutputShouldBeValidYAML)
	sc.Step(`^the JSON should report (\d+) blobs?$`, testCtx.theJSONShouldReportBlobs)
	sc.Step(`^the blob sizes should be "([^"]*)"$`, testCtx.theBlobSizesShouldBe)
	sc.Step(`^the CSV should have (\d+) rows?$`, testCtx.theCSVShouldHaveRows)
}
