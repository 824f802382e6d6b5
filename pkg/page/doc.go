// Package page renders the recipe listing and runs its live sessions.
//
// A listing is first served as plain HTML. The thin client in ClientScript
// then opens a WebSocket to the server, which builds the same document,
// starts a Session for it and keeps it in sync with the browser:
//
//	client -> server   {"type":"click","recipe_id":"42","control":"fav-toggle-42"}
//	client -> server   {"type":"close"}
//	server -> client   {"type":"patch","id":"fav-toggle-42","html":"<button ...>"}
//	server -> client   {"type":"toast","level":"success","message":"Recipe added to favorites!"}
//
// Every change to the document happens on the session loop. After each
// loop task the changed subtrees are written as patch frames, followed by
// the toast frames for notifications shown in that task.
package page

import _ "embed"

// ClientScript is the browser side of a session.
//
//go:embed client.js
var ClientScript []byte

// ClientScriptPath is where the server serves ClientScript.
const ClientScriptPath = "/_client.js"
