// Package control turns touchpad pointer events into remote input commands.
package control

// Message types sent by the touchpad page.
const (
	MsgDown              = "down"
	MsgMove              = "move"
	MsgUp                = "up"
	MsgCancel            = "cancel"
	MsgReset             = "reset"
	MsgStripDown         = "strip_down"
	MsgStripMove         = "strip_move"
	MsgStripUp           = "strip_up"
	MsgText              = "text"
	MsgKey               = "key"
	MsgModifier          = "modifier"
	MsgSensitivity       = "sensitivity"
	MsgScrollSensitivity = "scrollSensitivity"
	MsgStripSensitivity  = "stripSensitivity"
	MsgInputEnabled      = "inputEnabled"
	// MsgState is sent from the pad to the page.
	MsgState = "state"
)

// Message is a control websocket payload.
type Message struct {
	T       string  `json:"t"`
	ID      int     `json:"id,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Text    string  `json:"text,omitempty"`
	Key     string  `json:"key,omitempty"`
	Mods    uint8   `json:"mods,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// changesState reports whether handling m alters the session snapshot.
func (m Message) changesState() bool {
	switch m.T {
	case MsgModifier, MsgSensitivity, MsgScrollSensitivity, MsgStripSensitivity,
		MsgInputEnabled, MsgKey, MsgUp:
		return true
	default:
		return false
	}
}

// plausible reports whether the coordinates of a pointer message are finite
// and within MaxCoordinate. Other messages always pass.
func (m Message) plausible() bool {
	switch m.T {
	case MsgDown, MsgMove:
		return inRange(m.X) && inRange(m.Y)
	case MsgStripDown, MsgStripMove:
		return inRange(m.Y)
	default:
		return true
	}
}

// inRange reports whether v lies within ±MaxCoordinate. NaN never does.
func inRange(v float64) bool {
	return v >= -MaxCoordinate && v <= MaxCoordinate
}
