package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/stargraph/pkg/scene"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

// DisplayList is the JSON form of a surface: everything a remote client
// needs to draw the current frame.
type DisplayList struct {
	Surface   string             `json:"surface"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Transform viewport.Transform `json:"transform"`
	Style     scene.Style        `json:"style"`
	Layers    []*scene.Layer     `json:"layers"`
}

// NewDisplayList snapshots the surface. The layers are shared, not copied;
// encode the list before the surface changes again.
func NewDisplayList(s *scene.Surface) DisplayList {
	return DisplayList{
		Surface:   s.ID,
		Width:     s.Width,
		Height:    s.Height,
		Transform: s.Transform,
		Style:     s.Style(),
		Layers:    s.Layers(),
	}
}

// RenderJSON encodes the surface as an indented display list.
func RenderJSON(s *scene.Surface) ([]byte, error) {
	data, err := json.MarshalIndent(NewDisplayList(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode display list: %w", err)
	}
	return data, nil
}
