package favsync

import (
	"strconv"

	"github.com/vango-dev/recipebox/pkg/vdom"
)

// Markup contract with the rendered listing.
const (
	ClassButton  = "favorite-btn"
	ClassToggle  = "favorite-toggle"
	AttrListener = "data-listener"
	AttrRecipeID = "data-recipe-id"
)

// State is the logical favorite state of a control.
type State int

const (
	Unfavorited State = iota
	Favorited
)

func (s State) String() string {
	if s == Favorited {
		return "favorited"
	}
	return "unfavorited"
}

// Variant selects how a control presents its state.
type Variant int

const (
	// VariantButton is the labelled detail button (.favorite-btn).
	VariantButton Variant = iota
	// VariantToggle is the icon-only card toggle (.favorite-toggle).
	VariantToggle
)

func (v Variant) String() string {
	if v == VariantToggle {
		return ClassToggle
	}
	return ClassButton
}

// Control is a bound favorite toggle. Its State is authoritative; the
// markup of its node is derived from State and Pending and never read
// back after binding.
type Control struct {
	RecipeID string
	Variant  Variant

	state   State
	pending bool
	node    *vdom.VNode
}

// State returns the current favorite state.
func (c *Control) State() State { return c.state }

// Pending reports whether a mutation is in flight.
func (c *Control) Pending() bool { return c.pending }

// Node returns the element the control is bound to.
func (c *Control) Node() *vdom.VNode { return c.node }

// bindControl creates a control for node, reading its initial state from
// the server-rendered markup.
func bindControl(node *vdom.VNode) *Control {
	c := &Control{
		RecipeID: node.GetAttr(AttrRecipeID),
		Variant:  VariantToggle,
		node:     node,
	}
	if node.HasClass(ClassButton) {
		c.Variant = VariantButton
	}
	if node.HasClass("active") || findIcon(node, "fas") != nil {
		c.state = Favorited
	}
	return c
}

// findIcon returns the first <i> descendant of node, restricted to icons
// carrying class when it is not empty.
func findIcon(node *vdom.VNode, class string) *vdom.VNode {
	for _, child := range node.Children {
		if child.IsElement() && child.Tag == "i" && (class == "" || child.HasClass(class)) {
			return child
		}
		if found := findIcon(child, class); found != nil {
			return found
		}
	}
	return nil
}

// render applies the visual form of the control's state to its node.
func (c *Control) render(doc *vdom.Document) {
	favorited := c.state == Favorited

	switch c.Variant {
	case VariantButton:
		if favorited {
			doc.AddClass(c.node, "active")
			doc.SetChildren(c.node, vdom.I(vdom.Class("fas", "fa-heart")), vdom.Text(" Saved"))
		} else {
			doc.RemoveClass(c.node, "active")
			doc.SetChildren(c.node, vdom.I(vdom.Class("far", "fa-heart")), vdom.Text(" Save Recipe"))
		}

	case VariantToggle:
		icon := findIcon(c.node, "")
		if icon == nil {
			icon = vdom.I(vdom.Class("far", "fa-heart"))
			doc.SetChildren(c.node, icon)
		}
		if favorited {
			doc.RemoveClass(icon, "far")
			doc.AddClass(icon, "fas")
			doc.RemoveClass(c.node, "btn-light")
			doc.AddClass(c.node, "btn-danger")
		} else {
			doc.RemoveClass(icon, "fas")
			doc.AddClass(icon, "far")
			doc.RemoveClass(c.node, "btn-danger")
			doc.AddClass(c.node, "btn-light")
		}
	}

	doc.SetAttr(c.node, "aria-pressed", strconv.FormatBool(favorited))
	if c.pending {
		doc.SetAttr(c.node, "aria-busy", "true")
	} else {
		doc.RemoveAttr(c.node, "aria-busy")
	}
}
