package world

import (
	"context"
	"errors"
	"time"

	"gatecraft.ai/internal/protocol"
)

var ErrInboxFull = errors.New("world inbox full")

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.stepInternal(pendingActions)
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingActions = pendingActions[:0]
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Enqueue hands an action to the world loop without waiting for its result.
func (w *World) Enqueue(act protocol.Action) error {
	select {
	case w.inbox <- ActionEnvelope{Act: act}:
		return nil
	default:
		return ErrInboxFull
	}
}

// Submit hands an action to the world loop and waits for the tick that
// applies it.
func (w *World) Submit(ctx context.Context, act protocol.Action) (protocol.ActionResult, error) {
	resp := make(chan protocol.ActionResult, 1)
	select {
	case w.inbox <- ActionEnvelope{Act: act, Resp: resp}:
	case <-ctx.Done():
		return protocol.ActionResult{}, ctx.Err()
	}
	select {
	case r := <-resp:
		return r, nil
	case <-ctx.Done():
		return protocol.ActionResult{}, ctx.Err()
	}
}

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(actions []protocol.Action) (tick uint64, digest string, results []protocol.ActionResult) {
	envs := make([]ActionEnvelope, 0, len(actions))
	for _, a := range actions {
		envs = append(envs, ActionEnvelope{Act: a})
	}
	tick = w.tick.Load()
	results = w.stepInternal(envs)
	return tick, w.stateDigest(tick), results
}
