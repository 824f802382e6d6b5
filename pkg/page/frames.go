package page

import (
	"encoding/json"

	"github.com/vango-dev/recipebox/internal/errors"
)

// Client frame types.
const (
	FrameClick = "click"
	FrameClose = "close"
)

// Server frame types.
const (
	FramePatch = "patch"
	FrameToast = "toast"
)

// ClientFrame is a message from the browser.
//
//	{"type":"click","recipe_id":"42","control":"fav-toggle-42"}
//	{"type":"close"}
//
// Control is the element id of the clicked control; without it the first
// control bound to RecipeID is toggled.
type ClientFrame struct {
	Type     string `json:"type"`
	RecipeID string `json:"recipe_id,omitempty"`
	Control  string `json:"control,omitempty"`
}

// PatchFrame replaces the element with ID by HTML.
type PatchFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// ToastFrame mirrors a shown notification to page scripts.
type ToastFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// DecodeClientFrame parses and validates a client frame.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return ClientFrame{}, errors.New("E160").WithDetail("malformed JSON").Wrap(err)
	}
	switch f.Type {
	case FrameClose:
	case FrameClick:
		if f.RecipeID == "" && f.Control == "" {
			return ClientFrame{}, errors.New("E160").WithDetail("click without recipe_id")
		}
	default:
		return ClientFrame{}, errors.New("E160").WithDetailf("unknown frame type %q", f.Type)
	}
	return f, nil
}
