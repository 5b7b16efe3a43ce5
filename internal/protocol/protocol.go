package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const Version = "1.0"

// Action types.
const (
	ActionPlace    = "PLACE"
	ActionInteract = "INTERACT"
	ActionBreak    = "BREAK"
)

// Action is one block operation submitted for a tick.
type Action struct {
	Tick  uint64 `json:"tick,omitempty"`
	ID    string `json:"id"`
	Type  string `json:"type"`
	Actor string `json:"actor,omitempty"`
	Pos   [3]int `json:"pos"`

	// PLACE only.
	Block string `json:"block,omitempty"`

	// Actor orientation. Facing wins over Yaw when both are set; when
	// neither is set the action has no known orientation.
	Facing string   `json:"facing,omitempty"`
	Yaw    *float64 `json:"yaw,omitempty"`
}

type ActionResult struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func DecodeAction(b []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(b, &a); err != nil {
		return a, err
	}
	return a, a.Validate()
}

func (a Action) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("action: missing id")
	}
	switch a.Type {
	case ActionPlace:
		if strings.TrimSpace(a.Block) == "" {
			return fmt.Errorf("action %s: PLACE requires block", a.ID)
		}
	case ActionInteract, ActionBreak:
	default:
		return fmt.Errorf("action %s: unknown type %q", a.ID, a.Type)
	}
	return nil
}

func OK(id string) ActionResult { return ActionResult{ID: id, OK: true} }

func Fail(id, code, msg string) ActionResult {
	return ActionResult{ID: id, Code: code, Message: msg}
}
