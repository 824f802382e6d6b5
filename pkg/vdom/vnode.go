package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
	KindRaw                  // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Text     string   // For KindText and KindRaw
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// IsElement reports whether v is a non-nil element node.
func (v *VNode) IsElement() bool {
	return v != nil && v.Kind == KindElement
}

// ID returns the id attribute, or "".
func (v *VNode) ID() string {
	return v.GetAttr("id")
}

// GetAttr returns the string value of an attribute, or "".
func (v *VNode) GetAttr(key string) string {
	if !v.IsElement() {
		return ""
	}
	if s, ok := v.Props[key].(string); ok {
		return s
	}
	return ""
}

// HasAttr reports whether the attribute is present.
func (v *VNode) HasAttr(key string) bool {
	if !v.IsElement() {
		return false
	}
	_, ok := v.Props[key]
	return ok
}

// Classes returns the element's class list.
func (v *VNode) Classes() []string {
	return strings.Fields(v.GetAttr("class"))
}

// HasClass reports whether the element has the given class.
func (v *VNode) HasClass(class string) bool {
	for _, c := range v.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of the node and its descendants.
func (v *VNode) TextContent() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindText {
		return v.Text
	}
	var b strings.Builder
	for _, child := range v.Children {
		b.WriteString(child.TextContent())
	}
	return b.String()
}

// setAttr sets an attribute in place. Callers go through Document so the
// change is recorded.
func (v *VNode) setAttr(key string, value any) {
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[key] = value
}

// addClass adds class if absent. It reports whether the list changed.
func (v *VNode) addClass(class string) bool {
	if v.HasClass(class) {
		return false
	}
	classes := append(v.Classes(), class)
	v.setAttr("class", strings.Join(classes, " "))
	return true
}

// removeClass removes class if present. It reports whether the list changed.
func (v *VNode) removeClass(class string) bool {
	classes := v.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(v.Classes()) {
		return false
	}
	v.setAttr("class", strings.Join(kept, " "))
	return true
}
