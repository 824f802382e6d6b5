// Package render serializes vdom trees to HTML.
//
// The same renderer produces the server-side rendered page and the
// subtree HTML carried by live-session patches, so both always agree.
package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/recipebox/pkg/vdom"
)

// booleanAttrs are rendered as bare attribute names when true and
// omitted when false.
var booleanAttrs = map[string]bool{
	"disabled": true,
	"hidden":   true,
	"checked":  true,
	"selected": true,
	"defer":    true,
	"async":    true,
}

// RenderToString renders a VNode tree to an HTML string.
func RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustRenderToString is RenderToString for trees built in code, where a
// render error is a programming error.
func MustRenderToString(node *vdom.VNode) string {
	s, err := RenderToString(node)
	if err != nil {
		panic(err)
	}
	return s
}

// RenderToWriter streams a VNode tree to the given writer.
func RenderToWriter(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return renderElement(w, node)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func renderElement(w io.Writer, node *vdom.VNode) error {
	if _, err := fmt.Fprintf(w, "<%s", node.Tag); err != nil {
		return err
	}
	if err := renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	if vdom.IsVoidElement(node.Tag) {
		return nil
	}

	for _, child := range node.Children {
		if err := RenderToWriter(w, child); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", node.Tag)
	return err
}

// renderAttributes renders all attributes for an element.
func renderAttributes(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		// Skip internal props
		if strings.HasPrefix(key, "_") {
			continue
		}
		value := node.Props[key]

		if booleanAttrs[key] {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := fmt.Fprintf(w, " %s", key); err != nil {
						return err
					}
				}
				continue
			}
		}

		strValue := attrToString(value)
		if strValue == "" && key != "class" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(strValue)); err != nil {
			return err
		}
	}
	return nil
}

// attrToString converts an attribute value to its string form.
func attrToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
