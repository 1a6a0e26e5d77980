package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/vfs"
)

func newBuilder(table *vfs.Table) (*Builder, *HandleRegistry) {
	registry := NewHandleRegistry()
	return NewBuilder(table, registry, logging.NewNop()), registry
}

func TestBuildMissingIndex(t *testing.T) {
	builder, _ := newBuilder(vfs.NewTable())

	res := builder.Build("/")

	assert.True(t, res.Placeholder)
	assert.Contains(t, res.Document, "/index.html")
	assert.Zero(t, res.Rewrites)
	assert.Empty(t, res.Handles)
}

func TestBuildMissingIndexUnderRoot(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", "<html></html>") // outside the root
	builder, _ := newBuilder(table)

	res := builder.Build("/site/")

	assert.True(t, res.Placeholder)
	assert.Contains(t, res.Document, "/site/index.html")
}

func TestBuildRewritesStylesheet(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", `<html><head><link rel="stylesheet" href="./style.css"></head><body></body></html>`)
	table.Write("/style.css", "body { color: blue }")
	builder, registry := newBuilder(table)

	res := builder.Build("/")

	require.False(t, res.Placeholder)
	assert.Equal(t, 1, res.Rewrites)
	assert.NotContains(t, res.Document, `href="./style.css"`)

	require.Len(t, res.Handles, 1)
	h := res.Handles[0]
	assert.Contains(t, res.Document, h.URL())
	assert.Equal(t, "/style.css", h.Path)
	assert.Equal(t, "text/css", h.ContentType)

	// dereferencing the handle yields the table bytes
	got, ok := registry.Lookup(h.ID)
	require.True(t, ok)
	assert.Equal(t, "body { color: blue }", string(got.Bytes()))
}

func TestBuildRewritesImage(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", `<html><body><img src="a.png"></body></html>`)
	table.Write("/a.png", "\x89PNG fake bytes")
	builder, _ := newBuilder(table)

	res := builder.Build("/")

	assert.Equal(t, 1, res.Rewrites)
	assert.NotContains(t, res.Document, `src="a.png"`)
	require.Len(t, res.Handles, 1)
	assert.Equal(t, "image/png", res.Handles[0].ContentType)
	assert.Contains(t, res.Document, res.Handles[0].URL())
}

func TestBuildLeavesExternalAlone(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", `<html><head>`+
		`<link rel="stylesheet" href="https://cdn.example.com/x.css">`+
		`<script src="//cdn.example.com/lib.js"></script>`+
		`</head><body><img src="data:image/gif;base64,R0lGOD"></body></html>`)
	builder, _ := newBuilder(table)

	res := builder.Build("/")

	assert.Zero(t, res.Rewrites)
	assert.Contains(t, res.Document, `href="https://cdn.example.com/x.css"`)
	assert.Contains(t, res.Document, `src="//cdn.example.com/lib.js"`)
	assert.Contains(t, res.Document, `src="data:image/gif;base64,R0lGOD"`)
}

func TestBuildMissingAssetDiagnostic(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", `<html><head><link rel="stylesheet" href="gone.css"></head>`+
		`<body><img src="here.png"></body></html>`)
	table.Write("/here.png", "png")
	builder, _ := newBuilder(table)

	res := builder.Build("/")

	// the build continues past the miss
	assert.False(t, res.Placeholder)
	assert.Equal(t, 1, res.Rewrites)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "/gone.css", res.Diagnostics[0].Path)
	// the missed reference stays untouched
	assert.Contains(t, res.Document, `href="gone.css"`)
}

func TestBuildInjectsBootstrapFirst(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", `<html><head><script src="app.js"></script></head><body></body></html>`)
	table.Write("/app.js", "console.log('hi')")
	builder, _ := newBuilder(table)

	res := builder.Build("/")

	bootstrapAt := strings.Index(res.Document, BridgeScriptAttr)
	pageScriptAt := strings.Index(res.Document, "data-preview-path")
	require.GreaterOrEqual(t, bootstrapAt, 0)
	require.GreaterOrEqual(t, pageScriptAt, 0)
	assert.Less(t, bootstrapAt, pageScriptAt, "bootstrap must precede page scripts")
	assert.Contains(t, res.Document, "__preview_fetch")
}

func TestBuildRelativeDepth(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/site/index.html", `<html><head><link rel="stylesheet" href="../shared/base.css"></head><body></body></html>`)
	table.Write("/shared/base.css", "* {}")
	builder, _ := newBuilder(table)

	res := builder.Build("/site/")

	assert.Equal(t, 1, res.Rewrites)
	require.Len(t, res.Handles, 1)
	assert.Equal(t, "/shared/base.css", res.Handles[0].Path)
}

func TestBuildTitle(t *testing.T) {
	table := vfs.NewTable()
	table.Write("/index.html", `<html><head><title> My Site </title></head><body></body></html>`)
	builder, _ := newBuilder(table)

	assert.Equal(t, "My Site", builder.Build("/").Title)
}
