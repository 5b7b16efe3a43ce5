package world

import (
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
)

// applyGateEffects makes gate effects visible: metadata updates are stored,
// audited and logged as events, sounds are logged as events.
func (w *World) applyGateEffects(nowTick uint64, actor string, effs []gate.Effect) {
	for _, e := range effs {
		who := e.Actor
		if who == "" {
			who = actor
		}
		switch e.Kind {
		case gate.EffectUpdateBlock:
			if !e.State.Valid() {
				w.logger.Printf("gate update at %v dropped: invalid state %s", e.Pos, e.State)
				continue
			}
			prev, had := w.gates[e.Pos]
			w.gates[e.Pos] = e.State
			id := w.BlockAt(e.Pos)
			w.events = append(w.events, Event{
				Type:  EventGateUpdate,
				Pos:   e.Pos.ToArray(),
				Actor: who,
				Block: w.blockName(id),
				Meta:  int(e.Meta),
			})
			details := gateDetails(e.State)
			if had {
				details["prev_meta"] = int(gate.EncodeMeta(prev))
			}
			w.auditEvent(nowTick, who, "GATE_UPDATE", e.Pos, id, id, "", details)
		case gate.EffectPlaySound:
			w.events = append(w.events, Event{
				Type:  EventSound,
				Pos:   e.Pos.ToArray(),
				Actor: who,
				Sound: w.soundName(e.Sound),
			})
		}
	}
}

func (w *World) soundName(s gate.Sound) string {
	if s == gate.SoundDoor && w.cfg.GateSound != "" {
		return w.cfg.GateSound
	}
	return string(s)
}

func gateDetails(s gate.State) map[string]any {
	return map[string]any{
		"meta":    int(gate.EncodeMeta(s)),
		"facing":  s.Facing.String(),
		"open":    s.Open,
		"in_wall": s.InWall,
	}
}

// defaultGate is the state substituted for gates whose persisted metadata is
// missing or unreadable: closed, default facing, in-wall from the neighbours.
func (w *World) defaultGate(q gate.BlockQuery, pos geom.Vec3i) gate.State {
	f := w.cfg.GateDefaultFacing
	return gate.State{Facing: f, InWall: gate.InWall(q, pos, f)}
}
