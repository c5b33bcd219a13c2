package adminhttp

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/corectl/internal/corerr"
	"github.com/marmos91/corectl/pkg/fsmctl"
	"github.com/marmos91/corectl/pkg/handle"
)

// handlers groups the admin surface's dependencies: the entity handle table
// and the FSM control it introspects. Either may be nil (e.g. in tests that
// only exercise liveness): the debug listing endpoints then report an empty
// result, while readiness and handle deletion report 503 Service
// Unavailable.
type handlers struct {
	handles *handle.Server
	control *fsmctl.Control
}

// Liveness handles GET /healthz - simple liveness probe.
func (h *handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{"service": "corectld"}))
}

// Readiness handles GET /readyz - reports whether the handle table and FSM
// control are present and accepting work.
func (h *handlers) Readiness(w http.ResponseWriter, r *http.Request) {
	ready := h.handles != nil && h.control != nil
	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Status: "unhealthy",
			Error:  "handle server or FSM control not initialized",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"handle_count": h.handles.Count(),
		"fsm_queue":    h.control.QueueDepth(),
	}))
}

// DebugHandles handles GET /debug/handles - a snapshot of every live handle
// table entry.
func (h *handlers) DebugHandles(w http.ResponseWriter, r *http.Request) {
	if h.handles == nil {
		writeJSON(w, http.StatusOK, okResponse([]handle.Snapshot{}))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(h.handles.ListHandles()))
}

// DeleteHandle handles DELETE /debug/handles/{handle} - runs the
// pin-for-delete/close-wait/delete sequence against one handle table entry.
// A handle still referenced elsewhere reports 409 Conflict: its delete stays
// deferred until that reference is dropped, and this handler does not block
// on it. A repeated request meanwhile reports 422 (AlreadyDeleted).
func (h *handlers) DeleteHandle(w http.ResponseWriter, r *http.Request) {
	if h.handles == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{Status: "error", Error: "handle server not initialized"})
		return
	}

	raw := chi.URLParam(r, "handle")
	hdl, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Status: "error", Error: "invalid handle: " + raw})
		return
	}

	if err := h.handles.DeleteByHandle(handle.Handle(hdl)); err != nil {
		status := http.StatusUnprocessableEntity
		if corerr.IsTryAgainError(err) {
			status = http.StatusConflict
		}
		writeJSON(w, status, Response{Status: "error", Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, okResponse(map[string]string{"deleted": raw}))
}

// DebugFSM handles GET /debug/fsm - a snapshot of every FSM instance owned
// by the control, plus its queue depth and armed timer count.
func (h *handlers) DebugFSM(w http.ResponseWriter, r *http.Request) {
	if h.control == nil {
		writeJSON(w, http.StatusOK, okResponse(map[string]interface{}{"fsms": []fsmctl.FSMSnapshot{}}))
		return
	}
	writeJSON(w, http.StatusOK, okResponse(map[string]interface{}{
		"fsms":        h.control.ListFSMs(),
		"queue_depth": h.control.QueueDepth(),
		"timer_count": h.control.TimerCount(),
	}))
}
