package overlay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/shared/id"
	"github.com/glasspane/preview/internal/vfs"
)

// RegionAttr carries the opaque region identifier on a tagged element.
const RegionAttr = "data-region-id"

var (
	// ErrMalformedFragment is returned when an insertion payload yields no
	// element. The document is left untouched.
	ErrMalformedFragment = errors.New("fragment contains no element")

	// ErrNoDocument is returned when the root document entry is absent.
	ErrNoDocument = errors.New("root document not in the project")
)

// editableTags is the allow-list of text-bearing tags that are marked
// directly editable when tagged.
var editableTags = map[string]bool{
	"p": true, "span": true, "a": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "button": true, "figcaption": true,
}

// Sync tags fragments, relays selection, and commits edits into the table.
type Sync struct {
	table  *vfs.Table
	policy *bluemonday.Policy
	log    *logging.Logger
}

// NewSync creates an overlay sync over table.
func NewSync(table *vfs.Table, log *logging.Logger) *Sync {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("style").Globally()
	policy.AllowAttrs("class").Globally()
	return &Sync{table: table, policy: policy, log: log}
}

// Insert sanitizes fragment, tags its root element with a fresh region id,
// marks it editable when the tag allows, and splices it into the document at
// docPath immediately before the closing body marker (appended when the
// marker is absent). Returns the region id of the inserted fragment.
func (s *Sync) Insert(docPath, fragment string) (id.RegionID, error) {
	clean := s.policy.Sanitize(fragment)

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	root := frag.Find("body").ChildrenFiltered("*").First()
	if root.Length() == 0 {
		return "", ErrMalformedFragment
	}

	region := id.NewRegionID()
	root.SetAttr(RegionAttr, region.String())
	if tag := goquery.NodeName(root); editableTags[tag] {
		root.SetAttr("contenteditable", "true")
	}

	tagged, err := goquery.OuterHtml(root)
	if err != nil {
		return "", fmt.Errorf("serialize fragment: %w", err)
	}

	doc, ok := s.table.Read(docPath)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoDocument, docPath)
	}
	s.table.Write(docPath, spliceBeforeBody(doc, tagged))

	s.log.Info("fragment inserted",
		zap.String("path", docPath),
		zap.String("region", region.String()))
	return region, nil
}

// spliceBeforeBody inserts markup immediately before the last closing body
// marker, or appends it when the document has none. The splice is textual:
// the rest of the document passes through byte for byte.
func spliceBeforeBody(doc, markup string) string {
	lower := strings.ToLower(doc)
	at := strings.LastIndex(lower, "</body>")
	if at < 0 {
		return doc + markup
	}
	return doc[:at] + markup + doc[at:]
}

// locate finds the element tagged with region in doc. With colliding region
// ids the last match wins; callers treat a zero-length result as absent.
func locate(doc *goquery.Document, region id.RegionID) *goquery.Selection {
	return doc.Find(fmt.Sprintf("[%s=%q]", RegionAttr, region.String())).Last()
}

// mutate runs the read-modify-write cycle shared by commits and formatting:
// fresh parse of docPath, locate region, apply fn, re-serialize, store. An
// absent region is a no-op, not an error.
func (s *Sync) mutate(docPath string, region id.RegionID, fn func(*goquery.Selection)) error {
	source, ok := s.table.Read(docPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoDocument, docPath)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	target := locate(doc, region)
	if target.Length() == 0 {
		s.log.Debug("region not found, skipping",
			zap.String("path", docPath),
			zap.String("region", region.String()))
		return nil
	}
	fn(target)

	html, err := doc.Html()
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	s.table.Write(docPath, html)
	return nil
}

// CommitEdit stores the region's current rendered inner content back into the
// document. The content is sanitized on the way in.
func (s *Sync) CommitEdit(docPath string, region id.RegionID, inner string) error {
	clean := s.policy.Sanitize(inner)
	return s.mutate(docPath, region, func(sel *goquery.Selection) {
		sel.SetHtml(clean)
	})
}
