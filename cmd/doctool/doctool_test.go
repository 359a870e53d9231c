package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdftoolbox/pdftoolbox/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.pdf", pdftest.Pages(t, 2))
	out := filepath.Join(dir, "pages.zip")

	stdout, err := run(t, "split", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Output saved to:")

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, "page_1.pdf", zr.File[0].Name)
	assert.Equal(t, "page_2.pdf", zr.File[1].Name)
}

func TestMergeAndRearrangeCommands(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", pdftest.Pages(t, 1))
	b := writeFile(t, dir, "b.pdf", pdftest.Pages(t, 2))
	merged := filepath.Join(dir, "merged.pdf")

	_, err := run(t, "merge", a, b, "-o", merged)
	require.NoError(t, err)
	data, err := os.ReadFile(merged)
	require.NoError(t, err)
	assert.Equal(t, 3, pdftest.PageCount(t, data))

	reordered := filepath.Join(dir, "reordered.pdf")
	_, err = run(t, "rearrange", merged, "--order", "2,0", "-o", reordered)
	require.NoError(t, err)
	data, err = os.ReadFile(reordered)
	require.NoError(t, err)
	assert.Equal(t, 2, pdftest.PageCount(t, data))
}

func TestRejectsWrongContent(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "fake.pdf", []byte("plain text"))

	_, err := run(t, "compress-pdf", in, "-o", filepath.Join(dir, "out.pdf"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fake.pdf")
}

func TestRejectsDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "notes.txt", []byte("hello"))

	_, err := run(t, "merge", in, "-o", filepath.Join(dir, "out.pdf"))
	assert.Error(t, err)
}
