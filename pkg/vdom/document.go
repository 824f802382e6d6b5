package vdom

// Patch identifies a subtree whose HTML must be sent to the client.
// An empty ID addresses the document root.
type Patch struct {
	ID   string
	Node *VNode
}

// Document is a mutable tree with change tracking.
//
// Document is not safe for concurrent use; a live session only touches
// it from its event loop.
type Document struct {
	root  *VNode
	dirty map[*VNode]struct{}
}

// NewDocument wraps root in a Document.
func NewDocument(root *VNode) *Document {
	return &Document{
		root:  root,
		dirty: make(map[*VNode]struct{}),
	}
}

// Root returns the document root.
func (d *Document) Root() *VNode {
	return d.root
}

// Walk visits every node in document order. Returning false from fn
// skips the node's children.
func (d *Document) Walk(fn func(node, parent *VNode) bool) {
	walk(d.root, nil, fn)
}

func walk(node, parent *VNode, fn func(node, parent *VNode) bool) {
	if node == nil {
		return
	}
	if !fn(node, parent) {
		return
	}
	for _, child := range node.Children {
		walk(child, node, fn)
	}
}

// QueryAll returns every element matching pred, in document order.
func (d *Document) QueryAll(pred func(*VNode) bool) []*VNode {
	var out []*VNode
	d.Walk(func(node, _ *VNode) bool {
		if node.IsElement() && pred(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// QueryClass returns every element carrying at least one of the classes,
// in document order. It is the equivalent of the selector ".a, .b".
func (d *Document) QueryClass(classes ...string) []*VNode {
	return d.QueryAll(func(n *VNode) bool {
		for _, c := range classes {
			if n.HasClass(c) {
				return true
			}
		}
		return false
	})
}

// QueryAllClasses returns every element carrying all of the classes.
// It is the equivalent of the selector ".a.b".
func (d *Document) QueryAllClasses(classes ...string) []*VNode {
	return d.QueryAll(func(n *VNode) bool {
		for _, c := range classes {
			if !n.HasClass(c) {
				return false
			}
		}
		return true
	})
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *VNode {
	var found *VNode
	d.Walk(func(node, _ *VNode) bool {
		if found != nil {
			return false
		}
		if node.IsElement() && node.ID() == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Contains reports whether node is part of the document.
func (d *Document) Contains(node *VNode) bool {
	return d.parentOf(node) != nil || node == d.root
}

func (d *Document) parentOf(target *VNode) *VNode {
	var parent *VNode
	d.Walk(func(node, p *VNode) bool {
		if parent != nil {
			return false
		}
		if node == target {
			parent = p
			return false
		}
		return true
	})
	return parent
}

// AppendChild appends child to parent.
func (d *Document) AppendChild(parent, child *VNode) {
	parent.Children = append(parent.Children, child)
	d.MarkDirty(parent)
}

// Remove detaches node from its parent. It reports whether the node was
// found in the document.
func (d *Document) Remove(node *VNode) bool {
	parent := d.parentOf(node)
	if parent == nil {
		return false
	}
	for i, child := range parent.Children {
		if child == node {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
	delete(d.dirty, node)
	d.MarkDirty(parent)
	return true
}

// SetAttr sets an attribute on node.
func (d *Document) SetAttr(node *VNode, key string, value any) {
	if sameScalar(node.Props[key], value) && node.HasAttr(key) {
		return
	}
	node.setAttr(key, value)
	d.MarkDirty(node)
}

// RemoveAttr removes an attribute from node.
func (d *Document) RemoveAttr(node *VNode, key string) {
	if !node.HasAttr(key) {
		return
	}
	delete(node.Props, key)
	d.MarkDirty(node)
}

// AddClass adds a class to node.
func (d *Document) AddClass(node *VNode, class string) {
	if node.addClass(class) {
		d.MarkDirty(node)
	}
}

// RemoveClass removes a class from node.
func (d *Document) RemoveClass(node *VNode, class string) {
	if node.removeClass(class) {
		d.MarkDirty(node)
	}
}

// SetChildren replaces the children of node.
func (d *Document) SetChildren(node *VNode, children ...*VNode) {
	node.Children = children
	d.MarkDirty(node)
}

// MarkDirty records that node changed.
func (d *Document) MarkDirty(node *VNode) {
	if node != nil {
		d.dirty[node] = struct{}{}
	}
}

// Dirty reports whether any change is pending.
func (d *Document) Dirty() bool {
	return len(d.dirty) > 0
}

// Flush returns the patches covering every change recorded since the last
// Flush and clears the record. Each dirty node is covered by its nearest
// ancestor-or-self with an id; a patch nested in another patch is dropped.
// Patches are in document order.
func (d *Document) Flush() []Patch {
	if len(d.dirty) == 0 {
		return nil
	}

	targets := make(map[*VNode]struct{})
	var scan func(node *VNode, nearest *VNode)
	scan = func(node *VNode, nearest *VNode) {
		if node == nil {
			return
		}
		if node.IsElement() && node.ID() != "" {
			nearest = node
		}
		if _, ok := d.dirty[node]; ok {
			targets[nearest] = struct{}{}
		}
		for _, child := range node.Children {
			scan(child, nearest)
		}
	}
	scan(d.root, d.root)

	var patches []Patch
	var emit func(node *VNode)
	emit = func(node *VNode) {
		if node == nil {
			return
		}
		if _, ok := targets[node]; ok {
			patches = append(patches, Patch{ID: node.ID(), Node: node})
			return
		}
		for _, child := range node.Children {
			emit(child)
		}
	}
	emit(d.root)

	d.dirty = make(map[*VNode]struct{})
	return patches
}

// sameScalar compares attribute values without panicking on
// uncomparable types.
func sameScalar(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	}
	return false
}
