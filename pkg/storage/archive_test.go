package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveSaveAndList(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	path, err := archive.Save("exam-timetable-20260310-090000.csv", []byte("Date,Start\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Start\n", string(data))

	names, err := archive.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"exam-timetable-20260310-090000.csv"}, names)
}

func TestArchiveRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	path, err := archive.Save("../../etc/timetable.csv", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timetable.csv"), path)

	_, err = archive.Save("..", []byte("x"))
	require.Error(t, err)
}

func TestArchivePrune(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	old, err := archive.Save("old.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = archive.Save("fresh.pdf", []byte("fresh"))
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	removed, err := archive.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	names, err := archive.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh.pdf"}, names)
}
