package world

import (
	"time"

	"gatecraft.ai/internal/protocol"
)

func (w *World) stepInternal(actions []ActionEnvelope) []protocol.ActionResult {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	// The tick log keeps the slice, so start a fresh one.
	w.events = nil

	recorded := make([]protocol.Action, 0, len(actions))
	results := make([]protocol.ActionResult, 0, len(actions))
	for _, env := range actions {
		act := env.Act
		act.Tick = nowTick
		recorded = append(recorded, act)
		res := w.applyAction(nowTick, act)
		results = append(results, res)
		if env.Resp != nil {
			select {
			case env.Resp <- res:
			default:
			}
		}
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		err := w.tickLogger.WriteTick(TickLogEntry{
			Tick:    nowTick,
			Actions: recorded,
			Results: results,
			Events:  w.events,
			Digest:  digest,
		})
		if err != nil {
			w.logger.Printf("tick log write tick=%d: %v", nowTick, err)
		}
	}

	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		every := uint64(w.cfg.SnapshotEveryTicks)
		if nowTick%every == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				w.logger.Printf("snapshot sink full; dropped snapshot tick=%d", nowTick)
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)

	w.metrics.Store(WorldMetrics{
		Tick:         nextTick,
		LoadedChunks: len(w.chunks.Chunks),
		Gates:        len(w.gates),
		Actions:      len(recorded),
		Events:       len(w.events),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Admin: len(w.admin),
		},
		StepMS: stepMS,
	})
	return results
}
