package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and returns canned output.
type fakeRunner struct {
	calls  [][]string
	output []byte
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

type fakePages struct {
	pages []string
	err   error
	seen  string
}

func (f *fakePages) ReadPages(path string) ([]string, error) {
	f.seen = path
	_, statErr := os.Stat(path)
	if statErr != nil {
		return nil, statErr
	}
	return f.pages, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"scan.pdf", FormatPDF},
		{"SCAN.PDF", FormatPDF},
		{"photo.jpeg", FormatImage},
		{"photo.JPG", FormatImage},
		{"page.tiff", FormatImage},
		{"x.webp", FormatImage},
		{"mail.eml", FormatEmail},
		{"notes.md", FormatText},
		{"letter.rtf", FormatText},
		{"data.csv", FormatText},
		{"noext", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestTextExtractor_ReplacesInvalidUTF8(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.txt", "ok \xff\xfe done")

	result, err := TextExtractor{}.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ok � done", result.Text)
	assert.Empty(t, result.Metadata)
}

func TestImageExtractor(t *testing.T) {
	runner := &fakeRunner{output: []byte("TOTAL 42.00\n")}
	result, err := NewImageExtractor(runner).Extract(context.Background(), "/inbox/r.png")
	require.NoError(t, err)

	assert.Equal(t, "TOTAL 42.00\n", result.Text)
	assert.Equal(t, [][]string{{"tesseract", "/inbox/r.png", "stdout"}}, runner.calls)
}

func TestPDFExtractor_JoinsPagesAndRemovesTemp(t *testing.T) {
	tmpDir := t.TempDir()
	runner := &fakeRunner{}
	pages := &fakePages{pages: []string{"page one", "", "page three"}}

	result, err := NewPDFExtractor(runner, pages, tmpDir).Extract(context.Background(), "/inbox/a.pdf")
	require.NoError(t, err)

	assert.Equal(t, "page one\n\npage three", result.Text)
	assert.Equal(t, 3, result.Metadata["pages"])

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "ocrmypdf", call[0])
	assert.Equal(t, "/inbox/a.pdf", call[len(call)-2])
	assert.Equal(t, pages.seen, call[len(call)-1])

	_, err = os.Stat(pages.seen)
	assert.True(t, os.IsNotExist(err), "ocr output must be removed")
}

func TestPDFExtractor_RemovesTempOnFailure(t *testing.T) {
	tmpDir := t.TempDir()
	runner := &fakeRunner{err: ErrToolFailed}

	_, err := NewPDFExtractor(runner, &fakePages{}, tmpDir).Extract(context.Background(), "/inbox/a.pdf")
	assert.ErrorIs(t, err, ErrToolFailed)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPDFExtractor_PageReadFailure(t *testing.T) {
	tmpDir := t.TempDir()
	boom := errors.New("corrupt xref")

	_, err := NewPDFExtractor(&fakeRunner{}, &fakePages{err: boom}, tmpDir).Extract(context.Background(), "/inbox/a.pdf")
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedongthucPageReader_InvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "not.pdf", "plain text")
	_, err := LedongthucPageReader{}.ReadPages(path)
	assert.ErrorIs(t, err, ErrUnreadablePDF)
}

func TestExecRunner_ToolNotFound(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "docvault-no-such-tool")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestDispatcher_Routes(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{output: []byte("ocr text")}
	d := NewDispatcher(
		WithCommandRunner(runner),
		WithPageReader(&fakePages{pages: []string{"pdf text"}}),
		WithTempDir(dir),
	)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"note.txt", "plain", "plain"},
		{"scan.png", "binary", "ocr text"},
		{"doc.pdf", "%PDF", "pdf text"},
		{"msg.eml", "Subject: hi\r\n\r\nbody\r\n", "body"},
		{"unknown.xyz", "fallback", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.body)
			result, err := d.Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
			assert.NotNil(t, result.Metadata)
		})
	}
}

func TestDispatcher_MissingFile(t *testing.T) {
	_, err := NewDispatcher().Extract(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestDispatcher_StrategyOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "ignored")
	boom := errors.New("override")
	d := NewDispatcher(WithStrategy(FormatText, failingExtractor{err: boom}))

	_, err := d.Extract(context.Background(), path)
	assert.ErrorIs(t, err, boom)
}

type failingExtractor struct{ err error }

func (f failingExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	return nil, f.err
}
