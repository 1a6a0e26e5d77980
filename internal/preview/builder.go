package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/shared/id"
	"github.com/glasspane/preview/internal/shared/mime"
	"github.com/glasspane/preview/internal/shared/paths"
	"github.com/glasspane/preview/internal/vfs"
)

// BridgeScriptAttr marks the injected bootstrap so it can be recognized (and
// skipped) by later passes.
const BridgeScriptAttr = "data-preview-bridge"

// bootstrapScript installs the bridge shim as the first executable unit of
// the document, before any page logic runs. The sandbox binds
// __preview_fetch; the bootstrap only aliases it into the global fetch slot.
const bootstrapScript = `(function () {
  "use strict";
  if (typeof __preview_fetch === "function") {
    globalThis.fetch = __preview_fetch;
  }
})();`

// Diagnostic is a non-fatal problem encountered while building.
type Diagnostic struct {
	Path   string `json:"path"`
	Detail string `json:"detail"`
}

// BuildResult is one complete render generation.
type BuildResult struct {
	Generation   id.GenerationID
	DocumentPath string
	Document     string
	Title        string
	Handles      []*Handle
	Diagnostics  []Diagnostic
	Rewrites     int
	Placeholder  bool
	Elapsed      time.Duration
}

// Builder derives render generations from the project table.
type Builder struct {
	table    *vfs.Table
	registry *HandleRegistry
	log      *logging.Logger
}

// NewBuilder creates a builder over table, materializing handles in registry.
func NewBuilder(table *vfs.Table, registry *HandleRegistry, log *logging.Logger) *Builder {
	return &Builder{table: table, registry: registry, log: log}
}

// assetTargets maps goquery selectors to the attribute carrying the
// reference.
var assetTargets = []struct {
	selector string
	attr     string
}{
	{"link[rel='stylesheet'][href]", "href"},
	{"script[src]", "src"},
	{"img[src]", "src"},
	{"source[src]", "src"},
	{"audio[src]", "src"},
	{"video[src]", "src"},
}

// Build produces a new generation for the given preview root. Build never
// fails: a missing or unparseable entry document degrades to an explanatory
// placeholder, and individual missing assets degrade to diagnostics.
func (b *Builder) Build(root string) *BuildResult {
	start := time.Now()
	gen := id.NewGenerationID()
	docPath := paths.Index(root)
	res := &BuildResult{Generation: gen, DocumentPath: docPath}
	defer func() { res.Elapsed = time.Since(start) }()

	source, ok := b.table.Read(docPath)
	if !ok {
		b.log.Info("entry document missing, rendering placeholder", zap.String("path", docPath))
		res.Document = placeholderDocument(docPath, "no such file in the project")
		res.Placeholder = true
		return res
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		b.log.Warn("entry document failed to parse", zap.String("path", docPath), zap.Error(err))
		res.Document = placeholderDocument(docPath, fmt.Sprintf("parse failed: %v", err))
		res.Placeholder = true
		return res
	}

	res.Title = strings.TrimSpace(doc.Find("title").First().Text())

	b.injectBootstrap(doc)
	b.rewriteAssets(doc, res)

	html, err := doc.Html()
	if err != nil {
		b.log.Warn("generation failed to serialize", zap.String("path", docPath), zap.Error(err))
		b.registry.RevokeGeneration(gen)
		res.Handles = nil
		res.Rewrites = 0
		res.Document = placeholderDocument(docPath, fmt.Sprintf("serialize failed: %v", err))
		res.Placeholder = true
		return res
	}
	res.Document = html
	return res
}

// injectBootstrap places the bridge script as the first child of <head>, so
// it installs before any page logic. The html parser guarantees a head
// element exists for any input.
func (b *Builder) injectBootstrap(doc *goquery.Document) {
	script := fmt.Sprintf("<script %s=\"true\">%s</script>", BridgeScriptAttr, bootstrapScript)
	head := doc.Find("head").First()
	if head.Length() > 0 {
		head.PrependHtml(script)
		return
	}
	doc.Find("body").First().PrependHtml(script)
}

func (b *Builder) rewriteAssets(doc *goquery.Document, res *BuildResult) {
	for _, target := range assetTargets {
		attr := target.attr
		doc.Find(target.selector).Each(func(_ int, s *goquery.Selection) {
			ref, ok := s.Attr(attr)
			if !ok || ref == "" || strings.HasPrefix(ref, "#") {
				return
			}
			if _, bridge := s.Attr(BridgeScriptAttr); bridge {
				return
			}
			if paths.IsExternal(ref) {
				return
			}

			resolved := paths.Resolve(res.DocumentPath, ref)
			content, ok := b.table.Read(resolved)
			if !ok {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Path:   resolved,
					Detail: fmt.Sprintf("referenced as %q but not in the project", ref),
				})
				return
			}

			handle := b.registry.Materialize(res.Generation, resolved, mime.ByPath(resolved), []byte(content))
			res.Handles = append(res.Handles, handle)
			s.SetAttr(attr, handle.URL())
			s.SetAttr("data-preview-path", resolved)
			res.Rewrites++
		})
	}
}

func placeholderDocument(path, reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Preview unavailable</title></head>
<body>
  <main style="font-family: sans-serif; padding: 2rem;">
    <h1>Nothing to preview yet</h1>
    <p>The entry document <code>%s</code> could not be rendered: %s.</p>
  </main>
</body>
</html>`, path, reason)
}
