package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/world"
)

func newMux(w *world.World, idx runtimeIndex, validator *protocol.Validator, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, w, idx)
	})

	if envBool("GC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
			}{
				WorldID: w.ID(),
				Tick:    w.CurrentTick(),
				Metrics: w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		}))
		mux.HandleFunc("/admin/v1/snapshot", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			rec, err := w.RequestSnapshot(ctx2)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": rec.Tick, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": rec.Tick, "gates": rec.Gates, "chunks": rec.Chunks})
		}))
		mux.HandleFunc("/admin/v1/actions", loopbackOnly(actionsHandler(w, validator)))
	} else {
		logger.Printf("admin endpoints disabled (GC_ENABLE_ADMIN_HTTP=false)")
	}

	if envBool("GC_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

func loopbackOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

// actionsHandler submits one action and waits for the tick that applies it.
func actionsHandler(w *world.World, validator *protocol.Validator) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
		if err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		act, err := validator.DecodeAction(body)
		if err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(rw).Encode(protocol.Fail(act.ID, protocol.ErrProtoBadRequest, err.Error()))
			return
		}
		ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel2()
		res, err := w.Submit(ctx2, act)
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(protocol.Fail(act.ID, protocol.ErrInternal, err.Error()))
			return
		}
		_ = json.NewEncoder(rw).Encode(res)
	}
}

// Minimal Prometheus exposition format.
func writeMetrics(rw io.Writer, w *world.World, idx runtimeIndex) {
	m := w.Metrics()
	tick := w.CurrentTick()
	if m.Tick != 0 {
		tick = m.Tick
	}
	id := w.ID()

	fmt.Fprintf(rw, "# HELP gatecraft_world_tick Current world tick.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_tick gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_tick{world=%q} %d\n", id, tick)

	fmt.Fprintf(rw, "# HELP gatecraft_world_gates Gates with tracked state.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_gates gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_gates{world=%q} %d\n", id, m.Gates)

	fmt.Fprintf(rw, "# HELP gatecraft_world_loaded_chunks Loaded chunk count.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_loaded_chunks gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_loaded_chunks{world=%q} %d\n", id, m.LoadedChunks)

	fmt.Fprintf(rw, "# HELP gatecraft_world_step_actions Actions applied in the last tick.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_step_actions gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_step_actions{world=%q} %d\n", id, m.Actions)

	fmt.Fprintf(rw, "# HELP gatecraft_world_step_events Events emitted in the last tick.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_step_events gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_step_events{world=%q} %d\n", id, m.Events)

	fmt.Fprintf(rw, "# HELP gatecraft_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_queue_depth{world=%q,queue=%q} %d\n", id, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "gatecraft_world_queue_depth{world=%q,queue=%q} %d\n", id, "admin", m.QueueDepths.Admin)

	fmt.Fprintf(rw, "# HELP gatecraft_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_world_step_ms gauge\n")
	fmt.Fprintf(rw, "gatecraft_world_step_ms{world=%q} %.3f\n", id, m.StepMS)

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP gatecraft_index_queue_depth Index writer queue depth.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "gatecraft_index_queue_depth{world=%q} %d\n", id, s.QueueDepth)

	fmt.Fprintf(rw, "# HELP gatecraft_index_dropped_total Index writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE gatecraft_index_dropped_total counter\n")
	fmt.Fprintf(rw, "gatecraft_index_dropped_total{world=%q,kind=%q} %d\n", id, "tick", s.DropTickTotal)
	fmt.Fprintf(rw, "gatecraft_index_dropped_total{world=%q,kind=%q} %d\n", id, "audit", s.DropAuditTotal)
	fmt.Fprintf(rw, "gatecraft_index_dropped_total{world=%q,kind=%q} %d\n", id, "snapshot", s.DropSnapshotTotal)
}
