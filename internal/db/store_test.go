package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpetrov/mediadex/internal/entry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func file(path, parent string, size int64, mtime float64) entry.Entry {
	return entry.Entry{Path: path, Parent: parent, Size: size, Mtime: mtime}
}

func dir(path, parent string, mtime float64) entry.Entry {
	return entry.Entry{Path: path, Parent: parent, IsDir: true, Mtime: mtime}
}

func TestUpsertOverwritesOnConflict(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertEntries([]entry.Entry{file("a.txt", ".", 10, 1.0)}))
	require.NoError(t, store.UpsertEntries([]entry.Entry{file("a.txt", ".", 25, 2.5)}))

	entries, err := store.ListChildren(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(25), entries[0].Size)
	assert.Equal(t, 2.5, entries[0].Mtime)
}

func TestMarkAndSweep(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir(".", "", 1.0),
		file("keep.txt", ".", 1, 1.0),
		file("stale.txt", ".", 1, 1.0),
	}))

	require.NoError(t, store.ResetSeen())
	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir(".", "", 1.0),
		file("keep.txt", ".", 1, 1.0),
	}))
	require.NoError(t, store.DeleteUnseen())

	entries, err := store.ListChildren(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Path)
}

func TestListChildrenOrdersDirectoriesFirst(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir(".", "", 1.0),
		file("aaa.txt", ".", 1, 1.0),
		dir("zdir", ".", 1.0),
		dir("adir", ".", 1.0),
		file("bbb.txt", ".", 1, 1.0),
	}))

	entries, err := store.ListChildren(".")
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"adir", "zdir", "aaa.txt", "bbb.txt"}, paths)
}

func TestDirectorySizeIsNull(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{dir("d", ".", 1.0)}))

	var size any
	err := store.db.QueryRow(`SELECT size FROM entries WHERE path = 'd'`).Scan(&size)
	require.NoError(t, err)
	assert.Nil(t, size)
}

func TestReplaceTagsIsWholesale(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{
		dir("show.s01", ".", 1.0),
		dir("show.s02", ".", 1.0),
	}))

	require.NoError(t, store.ReplaceTags(
		[]entry.Tag{{Name: "old", DisplayName: "Old"}},
		[]entry.TagAssoc{{TagName: "old", DirPath: "show.s01"}},
	))
	require.NoError(t, store.ReplaceTags(
		[]entry.Tag{{Name: "show", DisplayName: "Show"}},
		[]entry.TagAssoc{
			{TagName: "show", DirPath: "show.s01"},
			{TagName: "show", DirPath: "show.s02"},
		},
	))

	tags, err := store.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "show", tags[0].Name)
	assert.Equal(t, 2, tags[0].DirCount)
}

func TestDeletingEntryCascadesAssociations(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.UpsertEntries([]entry.Entry{dir("gone", ".", 1.0)}))
	require.NoError(t, store.ReplaceTags(
		[]entry.Tag{{Name: "gone", DisplayName: "Gone"}},
		[]entry.TagAssoc{{TagName: "gone", DirPath: "gone"}},
	))

	require.NoError(t, store.ResetSeen())
	require.NoError(t, store.DeleteUnseen())

	dirs, err := store.ListDirectoriesByTag("gone")
	require.NoError(t, err)
	assert.Empty(t, dirs)
}
