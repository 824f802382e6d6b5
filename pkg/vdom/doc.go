// Package vdom provides the in-memory document model for recipebox pages.
//
// A rendered recipe listing lives on the server as a tree of VNodes, one
// tree per live session. Handlers mutate the tree and the session pushes
// the HTML of changed subtrees to the browser, which swaps them in.
//
// # Core Types
//
// VNode represents elements, text and raw HTML. Props holds attributes.
// Elements are created with variadic factory functions:
//
//	Div(Class("card"), ID("recipe-42"),
//	    H5(Class("card-title"), Text("Shakshuka")),
//	    Button(Class("btn", "favorite-toggle"), Data("recipe-id", "42")),
//	)
//
// # Documents
//
// Document wraps a root node and records which nodes were mutated.
// Flush turns the recorded mutations into Patches, one per nearest
// ancestor carrying an id attribute, so the client can replace whole
// subtrees by id.
package vdom
