// Package id provides centralized ID generation for the preview engine.
//
// ULIDs with type-specific prefixes (gen_*, region_*, asset_*) keep logs
// readable and prevent cross-domain ID misuse at compile time. Bridge request
// correlation uses plain UUIDs; those are minted per request by the shim and
// never persisted.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerationID identifies one render generation.
type GenerationID string

// RegionID identifies an editable region inside the root document.
type RegionID string

// HandleID identifies an ephemeral resource handle.
type HandleID string

const (
	GenerationPrefix = "gen"
	RegionPrefix     = "region"
	HandlePrefix     = "asset"
)

// Generator generates prefixed ULIDs.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewGenerationID generates a new render generation ID.
func NewGenerationID() GenerationID {
	return GenerationID(Default().GenerateWithPrefix(GenerationPrefix))
}

// NewRegionID generates a new editable region ID.
func NewRegionID() RegionID {
	return RegionID(Default().GenerateWithPrefix(RegionPrefix))
}

// NewHandleID generates a new resource handle ID.
func NewHandleID() HandleID {
	return HandleID(Default().GenerateWithPrefix(HandlePrefix))
}

// NewRequestID generates a bridge request correlation ID.
func NewRequestID() string {
	return uuid.New().String()
}

func (id GenerationID) String() string { return string(id) }
func (id RegionID) String() string     { return string(id) }
func (id HandleID) String() string     { return string(id) }

// IsValid checks that an ID carries the given prefix and a parseable ULID.
func IsValid(raw, prefix string) bool {
	rest, ok := strings.CutPrefix(raw, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}
