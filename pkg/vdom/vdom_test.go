package vdom

import (
	"reflect"
	"testing"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindRaw, "Raw"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateElement(t *testing.T) {
	var nilNode *VNode
	node := Button(
		Class("btn", "favorite-toggle"),
		nil,
		Data("recipe-id", "42"),
		[]Attr{ID("fav-42"), {}},
		I(Class("far", "fa-heart")),
		nilNode,
		"Save",
	)

	if node.Tag != "button" || node.Kind != KindElement {
		t.Fatalf("unexpected node %+v", node)
	}
	if got := node.GetAttr("class"); got != "btn favorite-toggle" {
		t.Errorf("class = %q", got)
	}
	if got := node.GetAttr("data-recipe-id"); got != "42" {
		t.Errorf("data-recipe-id = %q", got)
	}
	if node.ID() != "fav-42" {
		t.Errorf("ID() = %q", node.ID())
	}
	if len(node.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(node.Children))
	}
	if node.Children[1].Kind != KindText || node.Children[1].Text != "Save" {
		t.Errorf("string child should become text node, got %+v", node.Children[1])
	}
	if node.TextContent() != "Save" {
		t.Errorf("TextContent() = %q", node.TextContent())
	}
}

func TestClassHelpers(t *testing.T) {
	node := Div(Class("alert", "fade", "show"))
	doc := NewDocument(node)

	if !node.HasClass("fade") {
		t.Error("HasClass(fade) = false")
	}
	if node.HasClass("fa") {
		t.Error("HasClass must match whole class names")
	}

	doc.AddClass(node, "show")
	if doc.Dirty() {
		t.Error("adding a present class should not mark dirty")
	}

	doc.RemoveClass(node, "show")
	if !reflect.DeepEqual(node.Classes(), []string{"alert", "fade"}) {
		t.Errorf("Classes() = %v", node.Classes())
	}
	if !doc.Dirty() {
		t.Error("RemoveClass should mark dirty")
	}

	doc.Flush()
	doc.RemoveClass(node, "missing")
	if doc.Dirty() {
		t.Error("removing an absent class should not mark dirty")
	}
}

func TestAttrHelpersOnNonElements(t *testing.T) {
	var nilNode *VNode
	text := Text("x")

	if nilNode.GetAttr("id") != "" || text.GetAttr("id") != "" {
		t.Error("GetAttr on non-elements should be empty")
	}
	if nilNode.HasAttr("id") || text.HasClass("x") {
		t.Error("non-elements have no attributes")
	}
	if nilNode.TextContent() != "" {
		t.Error("nil TextContent should be empty")
	}
}

func sampleDocument() (*Document, *VNode, *VNode, *VNode) {
	btn := Button(ID("fav-1"), Class("btn", "favorite-btn"), Data("recipe-id", "1"))
	toggle := Button(Class("btn", "favorite-toggle"), Data("recipe-id", "2"))
	card := Div(ID("card-2"), Class("card"), toggle)
	root := Div(ID("app"), btn, card, P(Text("footer")))
	return NewDocument(root), btn, toggle, card
}

func TestQueries(t *testing.T) {
	doc, btn, toggle, card := sampleDocument()

	got := doc.QueryClass("favorite-btn", "favorite-toggle")
	if len(got) != 2 || got[0] != btn || got[1] != toggle {
		t.Errorf("QueryClass = %v", got)
	}

	if got := doc.QueryAllClasses("btn", "favorite-toggle"); len(got) != 1 || got[0] != toggle {
		t.Errorf("QueryAllClasses = %v", got)
	}

	if doc.GetElementByID("card-2") != card {
		t.Error("GetElementByID(card-2) failed")
	}
	if doc.GetElementByID("nope") != nil {
		t.Error("GetElementByID(nope) should be nil")
	}

	if !doc.Contains(toggle) || !doc.Contains(doc.Root()) {
		t.Error("Contains should find nodes in the tree")
	}
	if doc.Contains(Div()) {
		t.Error("Contains should not find detached nodes")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	doc, _, toggle, card := sampleDocument()

	var seen []*VNode
	doc.Walk(func(node, _ *VNode) bool {
		seen = append(seen, node)
		return node != card
	})
	for _, n := range seen {
		if n == toggle {
			t.Error("children of a skipped node were visited")
		}
	}
}

func TestRemoveAndAppend(t *testing.T) {
	doc, btn, _, _ := sampleDocument()
	root := doc.Root()

	if !doc.Remove(btn) {
		t.Fatal("Remove should find the button")
	}
	if doc.Contains(btn) {
		t.Error("button still in document")
	}
	if doc.Remove(btn) {
		t.Error("removing twice should report false")
	}

	extra := Div(ID("notification-container"))
	doc.AppendChild(root, extra)
	if root.Children[len(root.Children)-1] != extra {
		t.Error("AppendChild should append at the end")
	}
}

func TestFlushNearestIDAncestor(t *testing.T) {
	doc, btn, toggle, card := sampleDocument()

	doc.AddClass(toggle, "btn-danger")
	doc.SetAttr(btn, "class", "btn favorite-btn active")

	patches := doc.Flush()
	if len(patches) != 2 {
		t.Fatalf("patches = %d, want 2", len(patches))
	}
	if patches[0].ID != "fav-1" || patches[0].Node != btn {
		t.Errorf("patch[0] = %+v", patches[0])
	}
	if patches[1].ID != "card-2" || patches[1].Node != card {
		t.Errorf("patch[1] should target the card, got %+v", patches[1])
	}

	if doc.Dirty() || doc.Flush() != nil {
		t.Error("Flush should clear dirty state")
	}
}

func TestFlushNestedCollapses(t *testing.T) {
	doc, _, toggle, card := sampleDocument()
	root := doc.Root()

	doc.AddClass(toggle, "active")
	doc.AppendChild(root, Div(Text("new")))

	patches := doc.Flush()
	if len(patches) != 1 || patches[0].Node != root || patches[0].ID != "app" {
		t.Fatalf("expected a single root patch, got %+v", patches)
	}
	_ = card
}

func TestFlushRootWithoutID(t *testing.T) {
	inner := Span()
	doc := NewDocument(Div(inner))

	doc.SetAttr(inner, "title", "x")
	patches := doc.Flush()
	if len(patches) != 1 || patches[0].ID != "" || patches[0].Node != doc.Root() {
		t.Fatalf("expected root patch with empty id, got %+v", patches)
	}
}

func TestSetAttrUnchangedIsClean(t *testing.T) {
	node := Div(Data("listener", "true"))
	doc := NewDocument(node)

	doc.SetAttr(node, "data-listener", "true")
	if doc.Dirty() {
		t.Error("setting the same value should not mark dirty")
	}

	doc.RemoveAttr(node, "data-missing")
	if doc.Dirty() {
		t.Error("removing an absent attribute should not mark dirty")
	}

	doc.RemoveAttr(node, "data-listener")
	if !doc.Dirty() || node.HasAttr("data-listener") {
		t.Error("RemoveAttr should delete and mark dirty")
	}
}

func TestRange(t *testing.T) {
	nodes := Range([]string{"a", "", "c"}, func(s string, i int) *VNode {
		if s == "" {
			return nil
		}
		return Li(Textf("%d:%s", i, s))
	})
	if len(nodes) != 2 {
		t.Fatalf("Range = %d nodes, want 2", len(nodes))
	}
	if nodes[1].TextContent() != "2:c" {
		t.Errorf("nodes[1] = %q", nodes[1].TextContent())
	}
}
