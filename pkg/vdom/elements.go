package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"link":  true,
	"meta":  true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			if v.Key != "" {
				node.Props[v.Key] = v.Value
			}

		case []Attr:
			for _, attr := range v {
				if attr.Key != "" {
					node.Props[attr.Key] = attr.Value
				}
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a text node with formatted content.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a raw HTML node. The content is not escaped.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Range maps items to nodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

func Div(args ...any) *VNode     { return createElement("div", args) }
func Span(args ...any) *VNode    { return createElement("span", args) }
func P(args ...any) *VNode       { return createElement("p", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H5(args ...any) *VNode      { return createElement("h5", args) }
func A(args ...any) *VNode       { return createElement("a", args) }
func I(args ...any) *VNode       { return createElement("i", args) }
func Small(args ...any) *VNode   { return createElement("small", args) }
func Button(args ...any) *VNode  { return createElement("button", args) }
func Img(args ...any) *VNode     { return createElement("img", args) }
func Ul(args ...any) *VNode      { return createElement("ul", args) }
func Li(args ...any) *VNode      { return createElement("li", args) }

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("recipe-id", "42") → data-recipe-id="42"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Href sets the href attribute.
func Href(href string) Attr { return attr("href", href) }

// Src sets the src attribute.
func Src(src string) Attr { return attr("src", src) }

// Alt sets the alt attribute.
func Alt(alt string) Attr { return attr("alt", alt) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaPressed sets the aria-pressed attribute.
func AriaPressed(pressed bool) Attr { return attr("aria-pressed", strconv.FormatBool(pressed)) }

// AriaBusy sets the aria-busy attribute.
func AriaBusy(busy bool) Attr { return attr("aria-busy", strconv.FormatBool(busy)) }

// Disabled sets the disabled boolean attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }
