package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpetrov/mediadex/internal/entry"
)

func TestListAllStreamsInPathOrder(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir(".", "", 1.0),
		file("b.txt", ".", 2, 1.0),
		dir("a", ".", 1.0),
		file("a/c.txt", "a", 3, 1.0),
	}))

	rows, err := store.ListAll()
	require.NoError(t, err)
	defer rows.Close()

	var paths []string
	for rows.Next() {
		paths = append(paths, rows.Entry().Path)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{".", "a", "a/c.txt", "b.txt"}, paths)
}

func TestListTagsOrdersByCountThenDisplayName(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir("x1", ".", 1.0),
		dir("x2", ".", 1.0),
		dir("x3", ".", 1.0),
	}))
	require.NoError(t, store.ReplaceTags(
		[]entry.Tag{
			{Name: "beta", DisplayName: "Beta"},
			{Name: "alpha", DisplayName: "Alpha"},
			{Name: "rare", DisplayName: "Rare"},
		},
		[]entry.TagAssoc{
			{TagName: "beta", DirPath: "x1"},
			{TagName: "beta", DirPath: "x2"},
			{TagName: "alpha", DirPath: "x1"},
			{TagName: "alpha", DirPath: "x3"},
			{TagName: "rare", DirPath: "x2"},
		},
	))

	tags, err := store.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 3)
	// Equal counts tie-break on display name.
	assert.Equal(t, "Alpha", tags[0].DisplayName)
	assert.Equal(t, "Beta", tags[1].DisplayName)
	assert.Equal(t, "Rare", tags[2].DisplayName)
	assert.Equal(t, 2, tags[0].DirCount)
	assert.Equal(t, 1, tags[2].DirCount)
}

func TestListDirectoriesByTagIsSorted(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir("zeta", ".", 1.0),
		dir("alpha", ".", 1.0),
	}))
	require.NoError(t, store.ReplaceTags(
		[]entry.Tag{{Name: "tok", DisplayName: "Tok"}},
		[]entry.TagAssoc{
			{TagName: "tok", DirPath: "zeta"},
			{TagName: "tok", DirPath: "alpha"},
		},
	))

	dirs, err := store.ListDirectoriesByTag("tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, dirs)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir(".", "", 1.0),
		dir("a", ".", 1.0),
		file("a/one.mp4", "a", 100, 1.0),
		file("two.mp4", ".", 50, 1.0),
	}))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Entries)
	assert.Equal(t, int64(2), stats.Dirs)
	assert.Equal(t, int64(2), stats.Files)
	assert.Equal(t, int64(150), stats.TotalBytes)
}
