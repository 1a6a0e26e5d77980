package vfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteDelete(t *testing.T) {
	table := NewTable()

	_, ok := table.Read("/index.html")
	assert.False(t, ok)

	table.Write("/index.html", "<html></html>")
	content, ok := table.Read("/index.html")
	require.True(t, ok)
	assert.Equal(t, "<html></html>", content)

	// paths normalize on the way in and out
	table.Write("style.css", "body{}")
	content, ok = table.Read("/style.css")
	require.True(t, ok)
	assert.Equal(t, "body{}", content)

	table.Delete("/index.html")
	_, ok = table.Read("/index.html")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}

func TestMergeLastWriteWins(t *testing.T) {
	table := NewTable()
	table.Write("/a.txt", "old")

	table.Merge(map[string]string{
		"/a.txt": "new",
		"/b.txt": "fresh",
	})

	a, _ := table.Read("/a.txt")
	b, _ := table.Read("/b.txt")
	assert.Equal(t, "new", a)
	assert.Equal(t, "fresh", b)
	assert.Equal(t, []string{"/a.txt", "/b.txt"}, table.Paths())
}

func TestWatch(t *testing.T) {
	table := NewTable()

	var got [][]string
	unwatch := table.Watch(func(changed []string) {
		got = append(got, changed)
	})

	table.Write("/x.css", "a{}")
	table.Merge(map[string]string{"/y.css": "b{}", "/z.css": "c{}"})
	table.Delete("/missing.css") // no-op, no notification

	require.Len(t, got, 2)
	assert.Equal(t, []string{"/x.css"}, got[0])
	assert.Equal(t, []string{"/y.css", "/z.css"}, got[1])

	unwatch()
	table.Write("/x.css", "d{}")
	assert.Len(t, got, 2)
}

func TestSnapshotIsCopy(t *testing.T) {
	table := NewTable()
	table.Write("/a.txt", "1")

	snap := table.Snapshot()
	snap["/a.txt"] = "mutated"
	snap["/b.txt"] = "added"

	a, _ := table.Read("/a.txt")
	assert.Equal(t, "1", a)
	_, ok := table.Read("/b.txt")
	assert.False(t, ok)
}

func TestMetadata(t *testing.T) {
	table := NewTable()

	_, ok := table.ReadMetadata()
	assert.False(t, ok)

	created := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, table.WriteMetadata(Metadata{Name: "demo", Template: "blank", CreatedAt: created}))

	meta, ok := table.ReadMetadata()
	require.True(t, ok)
	assert.Equal(t, "demo", meta.Name)
	assert.Equal(t, created, meta.CreatedAt)

	// the entry is an ordinary file
	raw, ok := table.Read(MetadataPath)
	require.True(t, ok)
	assert.Contains(t, raw, "\"name\": \"demo\"")
}

func TestGlob(t *testing.T) {
	table := NewTable()
	table.Merge(map[string]string{
		"/index.html":    "",
		"/style.css":     "",
		"/src/app.js":    "",
		"/src/lib/x.js":  "",
		"/src/lib/y.css": "",
	})

	js, err := table.Glob("**/*.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/app.js", "/src/lib/x.js"}, js)

	css, err := table.Glob("/src/lib/*.css")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/lib/y.css"}, css)

	_, err = table.Glob("[bad")
	assert.Error(t, err)
}

func TestUnder(t *testing.T) {
	table := NewTable()
	table.Merge(map[string]string{
		"/index.html": "",
		"/src/app.js": "",
		"/srcfile":    "",
	})

	assert.Equal(t, []string{"/src/app.js"}, table.Under("/src"))
	assert.Len(t, table.Under("/"), 3)
}
