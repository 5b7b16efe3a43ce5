package world

import "gatecraft.ai/internal/sim/geom"

func (w *World) auditSetBlock(tick uint64, actor string, pos geom.Vec3i, from, to uint16, reason string) {
	w.writeAudit(AuditEntry{
		Tick:   tick,
		Actor:  actor,
		Action: "SET_BLOCK",
		Pos:    pos.ToArray(),
		From:   from,
		To:     to,
		Reason: reason,
	})
}

func (w *World) auditEvent(tick uint64, actor string, action string, pos geom.Vec3i, from, to uint16, reason string, details map[string]any) {
	w.writeAudit(AuditEntry{
		Tick:    tick,
		Actor:   actor,
		Action:  action,
		Pos:     pos.ToArray(),
		From:    from,
		To:      to,
		Reason:  reason,
		Details: details,
	})
}

func (w *World) writeAudit(e AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.logger.Printf("audit write tick=%d action=%s: %v", e.Tick, e.Action, err)
	}
}
