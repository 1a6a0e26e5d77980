package overlay

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/glasspane/preview/internal/shared/id"
)

// Alignment is a horizontal text alignment value.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

func (a Alignment) valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// Align sets the region's text alignment absolutely. Re-applying the same
// alignment leaves the document unchanged.
func (s *Sync) Align(docPath string, region id.RegionID, align Alignment) error {
	if !align.valid() {
		return fmt.Errorf("unsupported alignment %q", align)
	}
	return s.mutate(docPath, region, func(sel *goquery.Selection) {
		setStyleProp(sel, "text-align", string(align))
	})
}

// ToggleBold toggles bold emphasis on the region. Applying it to an already
// bold region removes the emphasis.
func (s *Sync) ToggleBold(docPath string, region id.RegionID) error {
	return s.mutate(docPath, region, func(sel *goquery.Selection) {
		toggleStyleProp(sel, "font-weight", "bold")
	})
}

// ToggleItalic toggles italic emphasis on the region.
func (s *Sync) ToggleItalic(docPath string, region id.RegionID) error {
	return s.mutate(docPath, region, func(sel *goquery.Selection) {
		toggleStyleProp(sel, "font-style", "italic")
	})
}

// styleProps parses an inline style attribute into ordered property pairs.
func styleProps(sel *goquery.Selection) [][2]string {
	raw, _ := sel.Attr("style")
	var props [][2]string
	for _, decl := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		props = append(props, [2]string{name, value})
	}
	return props
}

func writeStyle(sel *goquery.Selection, props [][2]string) {
	if len(props) == 0 {
		sel.RemoveAttr("style")
		return
	}
	decls := make([]string, 0, len(props))
	for _, p := range props {
		decls = append(decls, p[0]+": "+p[1])
	}
	sel.SetAttr("style", strings.Join(decls, "; "))
}

// setStyleProp sets prop to value, replacing any existing declaration.
func setStyleProp(sel *goquery.Selection, prop, value string) {
	props := styleProps(sel)
	for i, p := range props {
		if p[0] == prop {
			props[i][1] = value
			writeStyle(sel, props)
			return
		}
	}
	writeStyle(sel, append(props, [2]string{prop, value}))
}

// toggleStyleProp sets prop to value, or removes the declaration when it is
// already set to value.
func toggleStyleProp(sel *goquery.Selection, prop, value string) {
	props := styleProps(sel)
	for i, p := range props {
		if p[0] == prop && p[1] == value {
			writeStyle(sel, append(props[:i], props[i+1:]...))
			return
		}
	}
	setStyleProp(sel, prop, value)
}
