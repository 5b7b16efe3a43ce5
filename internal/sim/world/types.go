package world

import "gatecraft.ai/internal/protocol"

type TickLogEntry struct {
	Tick    uint64                  `json:"tick"`
	Actions []protocol.Action       `json:"actions,omitempty"`
	Results []protocol.ActionResult `json:"results,omitempty"`
	Events  []Event                 `json:"events,omitempty"`
	Digest  string                  `json:"digest"`
}

type AuditEntry struct {
	Tick    uint64         `json:"tick"`
	Actor   string         `json:"actor"`
	Action  string         `json:"action"` // e.g. "SET_BLOCK"
	Pos     [3]int         `json:"pos"`
	From    uint16         `json:"from"`
	To      uint16         `json:"to"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Event types emitted into the tick log.
const (
	EventBlockSet   = "BLOCK_SET"
	EventGateUpdate = "GATE_UPDATE"
	EventSound      = "SOUND"
)

// Event is a world-visible change produced while applying a tick.
type Event struct {
	Type  string `json:"type"`
	Pos   [3]int `json:"pos"`
	Actor string `json:"actor,omitempty"`
	Block string `json:"block,omitempty"`
	Meta  int    `json:"meta"`
	Sound string `json:"sound,omitempty"`
}

// Actor recorded for changes the world makes on its own behalf.
const worldActor = "WORLD"
