package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/shared/id"
	"github.com/glasspane/preview/internal/vfs"
)

const docPath = "/index.html"

func newSync(doc string) (*Sync, *vfs.Table) {
	table := vfs.NewTable()
	if doc != "" {
		table.Write(docPath, doc)
	}
	return NewSync(table, logging.NewNop()), table
}

func TestInsertTagsFragment(t *testing.T) {
	s, table := newSync(`<html><body><main>site</main></body></html>`)

	region, err := s.Insert(docPath, `<p>Hello</p>`)
	require.NoError(t, err)
	assert.True(t, id.IsValid(region.String(), id.RegionPrefix))

	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, RegionAttr+`="`+region.String()+`"`)
	assert.Contains(t, doc, `contenteditable="true"`)

	// spliced before the closing body marker, after existing content
	bodyEnd := strings.Index(doc, "</body>")
	fragAt := strings.Index(doc, region.String())
	mainAt := strings.Index(doc, "<main>")
	require.GreaterOrEqual(t, bodyEnd, 0)
	assert.Less(t, fragAt, bodyEnd)
	assert.Less(t, mainAt, fragAt)
}

func TestInsertNonEditableTag(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)

	_, err := s.Insert(docPath, `<div><p>wrapped</p></div>`)
	require.NoError(t, err)

	doc, _ := table.Read(docPath)
	assert.NotContains(t, doc, "contenteditable")
}

func TestInsertWithoutBodyMarker(t *testing.T) {
	s, table := newSync(`<h1>bare</h1>`)

	region, err := s.Insert(docPath, `<p>appended</p>`)
	require.NoError(t, err)

	doc, _ := table.Read(docPath)
	assert.True(t, strings.HasPrefix(doc, "<h1>bare</h1>"))
	assert.Contains(t, doc, region.String())
}

func TestInsertMalformedFragment(t *testing.T) {
	original := `<html><body></body></html>`
	s, table := newSync(original)

	_, err := s.Insert(docPath, "no element here")
	assert.ErrorIs(t, err, ErrMalformedFragment)

	doc, _ := table.Read(docPath)
	assert.Equal(t, original, doc, "failed insertion must not mutate")
}

func TestInsertSanitizes(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)

	_, err := s.Insert(docPath, `<p onclick="steal()">hi<script>evil()</script></p>`)
	require.NoError(t, err)

	doc, _ := table.Read(docPath)
	assert.NotContains(t, doc, "script")
	assert.NotContains(t, doc, "onclick")
	assert.Contains(t, doc, "hi")
}

func TestInsertMissingDocument(t *testing.T) {
	s, _ := newSync("")

	_, err := s.Insert(docPath, `<p>x</p>`)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestCommitEditReplacesInner(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)
	region, err := s.Insert(docPath, `<p>before</p>`)
	require.NoError(t, err)

	require.NoError(t, s.CommitEdit(docPath, region, "after the edit"))

	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, "after the edit")
	assert.NotContains(t, doc, "before")
	assert.Contains(t, doc, region.String(), "the tag survives the commit")
}

func TestCommitEditSanitizesInner(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)
	region, err := s.Insert(docPath, `<p>x</p>`)
	require.NoError(t, err)

	require.NoError(t, s.CommitEdit(docPath, region, `safe<script>bad()</script>`))

	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, "safe")
	assert.NotContains(t, doc, "bad()")
}

func TestCommitEditAbsentRegion(t *testing.T) {
	original := `<html><body><p>still here</p></body></html>`
	s, table := newSync(original)

	require.NoError(t, s.CommitEdit(docPath, id.NewRegionID(), "ignored"))

	doc, _ := table.Read(docPath)
	assert.Equal(t, original, doc, "absent region is a no-op")
}

func TestCommitEditDuplicateRegionLastWins(t *testing.T) {
	region := id.NewRegionID()
	s, table := newSync(`<html><body>` +
		`<p data-region-id="` + region.String() + `">first</p>` +
		`<p data-region-id="` + region.String() + `">second</p>` +
		`</body></html>`)

	require.NoError(t, s.CommitEdit(docPath, region, "edited"))

	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, "first", "earlier duplicate stays untouched")
	assert.NotContains(t, doc, "second")
	assert.Contains(t, doc, "edited")
}

func TestAlignAbsolute(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)
	region, err := s.Insert(docPath, `<p>text</p>`)
	require.NoError(t, err)

	require.NoError(t, s.Align(docPath, region, AlignCenter))
	require.NoError(t, s.Align(docPath, region, AlignRight))

	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, "text-align: right")
	assert.NotContains(t, doc, "center", "alignment is set absolutely")
}

func TestAlignRejectsUnknownValue(t *testing.T) {
	s, _ := newSync(`<html><body></body></html>`)

	err := s.Align(docPath, id.NewRegionID(), Alignment("justify"))
	assert.Error(t, err)
}

func TestBoldToggleIdempotent(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)
	region, err := s.Insert(docPath, `<p>text</p>`)
	require.NoError(t, err)

	require.NoError(t, s.ToggleBold(docPath, region))
	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, "font-weight: bold")

	require.NoError(t, s.ToggleBold(docPath, region))
	doc, _ = table.Read(docPath)
	assert.NotContains(t, doc, "font-weight")
}

func TestItalicToggleKeepsAlignment(t *testing.T) {
	s, table := newSync(`<html><body></body></html>`)
	region, err := s.Insert(docPath, `<p>text</p>`)
	require.NoError(t, err)

	require.NoError(t, s.Align(docPath, region, AlignCenter))
	require.NoError(t, s.ToggleItalic(docPath, region))
	require.NoError(t, s.ToggleItalic(docPath, region))

	doc, _ := table.Read(docPath)
	assert.Contains(t, doc, "text-align: center")
	assert.NotContains(t, doc, "font-style")
}

func TestSelectorRelaysSelection(t *testing.T) {
	sel := NewSelector()

	var events []*Selection
	sel.SetListener(func(s *Selection) { events = append(events, s) })

	region := id.NewRegionID()
	rect := Rect{X: 10, Y: 20, Width: 300, Height: 40}
	sel.Select(region, rect)

	require.NotNil(t, sel.Current())
	assert.Equal(t, region, sel.Current().Region)
	assert.Equal(t, rect, sel.Current().Rect)

	sel.Clear()
	assert.Nil(t, sel.Current())

	require.Len(t, events, 2)
	assert.Equal(t, region, events[0].Region)
	assert.Nil(t, events[1], "clear relays nil")
}

func TestSelectorClearWithoutSelection(t *testing.T) {
	sel := NewSelector()

	calls := 0
	sel.SetListener(func(*Selection) { calls++ })
	sel.Clear()

	assert.Zero(t, calls, "clearing an empty selection is silent")
}
