package httpapi

import "net/http"

func (h *Handler) StartRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartRefresh")
	defer span.End()

	status, err := h.refreshService.Start(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "start refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, status)
}

func (h *Handler) StopRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StopRefresh")
	defer span.End()

	if err := h.refreshService.Stop(ctx); err != nil {
		h.logger.WarnContext(ctx, "stop refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.refreshService.Status())
}

func (h *Handler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.refreshService.Status())
}
