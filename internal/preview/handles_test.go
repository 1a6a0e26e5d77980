package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/preview/internal/shared/id"
)

func TestMaterializeNeverReuses(t *testing.T) {
	registry := NewHandleRegistry()
	gen1 := id.NewGenerationID()
	gen2 := id.NewGenerationID()

	// identical content, different generations: distinct handles
	a := registry.Materialize(gen1, "/style.css", "text/css", []byte("body {}"))
	b := registry.Materialize(gen2, "/style.css", "text/css", []byte("body {}"))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.ETag, b.ETag, "identical bytes share an etag")
	assert.Equal(t, "/__preview/assets/"+a.ID.String(), a.URL())
}

func TestRevokeGeneration(t *testing.T) {
	registry := NewHandleRegistry()
	gen1 := id.NewGenerationID()
	gen2 := id.NewGenerationID()

	old := registry.Materialize(gen1, "/a.css", "text/css", []byte("a"))
	registry.Materialize(gen1, "/b.css", "text/css", []byte("b"))
	kept := registry.Materialize(gen2, "/a.css", "text/css", []byte("a"))
	require.Equal(t, 3, registry.LiveCount())

	registry.RevokeGeneration(gen1)

	assert.Equal(t, 1, registry.LiveCount())
	_, ok := registry.Lookup(old.ID)
	assert.False(t, ok, "revoked handle must not dereference")
	got, ok := registry.Lookup(kept.ID)
	require.True(t, ok)
	assert.Equal(t, "a", string(got.Bytes()))

	// revoking again is a no-op
	registry.RevokeGeneration(gen1)
	assert.Equal(t, 1, registry.LiveCount())
}

func TestHandleETagQuoted(t *testing.T) {
	registry := NewHandleRegistry()
	h := registry.Materialize(id.NewGenerationID(), "/x.js", "text/javascript", []byte("x"))

	assert.Regexp(t, `^"[0-9a-f]{32}"$`, h.ETag)
}
