package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fundflow/internal/export"
	"github.com/MrJamesThe3rd/fundflow/internal/http/render"
	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

var contentTypes = map[importer.Format]string{
	importer.FormatCSV:  "text/csv; charset=utf-8",
	importer.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := importer.Format(q.Get("format"))
	if format == "" {
		format = importer.FormatCSV
	}

	contentType, ok := contentTypes[format]
	if !ok {
		render.BadRequest(w, fmt.Sprintf("unknown format %q", format))
		return
	}

	filter := workflow.ListFilter{
		Requester: q.Get("requester"),
		Project:   q.Get("project"),
	}

	if s := q.Get("stage"); s != "" {
		stage, ok := record.ParseStage(s)
		if !ok {
			render.BadRequest(w, fmt.Sprintf("unknown stage %q", s))
			return
		}

		filter.Stage = &stage
	}

	// Buffered so a failed export still gets a proper error response.
	var buf bytes.Buffer

	if _, err := h.svc.Export(r.Context(), filter, format, &buf); err != nil {
		render.Error(w, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.%s", time.Now().Format("20060102"), format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
