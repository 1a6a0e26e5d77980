package preview

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/glasspane/preview/internal/shared/id"
)

// HandleURLPrefix is where handle dereferences are served.
const HandleURLPrefix = "/__preview/assets/"

// Handle is a transient byte-backed reference materialized for exactly one
// rewritten asset reference in one generation. It is never reused across
// generations, even for identical content.
type Handle struct {
	ID          id.HandleID
	Generation  id.GenerationID
	Path        string
	ContentType string
	ETag        string
	data        []byte
}

// URL returns the dereferencing URL rewritten into the document.
func (h *Handle) URL() string {
	return HandleURLPrefix + h.ID.String()
}

// Bytes returns the backing content.
func (h *Handle) Bytes() []byte {
	return h.data
}

// HandleRegistry tracks live handles across generations.
type HandleRegistry struct {
	mu      sync.RWMutex
	handles map[id.HandleID]*Handle
	byGen   map[id.GenerationID][]id.HandleID
}

// NewHandleRegistry creates an empty registry.
func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{
		handles: make(map[id.HandleID]*Handle),
		byGen:   make(map[id.GenerationID][]id.HandleID),
	}
}

// Materialize creates a fresh handle for one asset reference.
func (r *HandleRegistry) Materialize(gen id.GenerationID, path, contentType string, content []byte) *Handle {
	sum := blake2b.Sum256(content)
	h := &Handle{
		ID:          id.NewHandleID(),
		Generation:  gen,
		Path:        path,
		ContentType: contentType,
		ETag:        `"` + hex.EncodeToString(sum[:16]) + `"`,
		data:        content,
	}

	r.mu.Lock()
	r.handles[h.ID] = h
	r.byGen[gen] = append(r.byGen[gen], h.ID)
	r.mu.Unlock()
	return h
}

// Lookup dereferences a handle id.
func (r *HandleRegistry) Lookup(hid id.HandleID) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[hid]
	return h, ok
}

// RevokeGeneration releases every handle belonging to gen. Called strictly
// after the succeeding generation is installed, never before, so in-flight
// loads of the superseded document are not broken.
func (r *HandleRegistry) RevokeGeneration(gen id.GenerationID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, hid := range r.byGen[gen] {
		delete(r.handles, hid)
	}
	delete(r.byGen, gen)
}

// LiveCount reports how many handles are currently reachable.
func (r *HandleRegistry) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
