package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fundflow/internal/http/render"
	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type Handler struct {
	importSvc *importer.Service
	engine    *workflow.Engine
}

func NewHandler(importSvc *importer.Service, engine *workflow.Engine) *Handler {
	return &Handler{
		importSvc: importSvc,
		engine:    engine,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
}

type recordSummary struct {
	ID        string       `json:"id"`
	Row       int          `json:"row,omitempty"`
	Type      record.Type  `json:"type"`
	Requester string       `json:"requester,omitempty"`
	Purpose   string       `json:"purpose"`
	Amount    int64        `json:"requested_amount"`
	Stage     record.Stage `json:"stage"`
}

type importSuccessResponse struct {
	Imported int             `json:"imported"`
	Records  []recordSummary `json:"records"`
}

type conflictDTO struct {
	Incoming recordSummary `json:"incoming"`
	Existing recordSummary `json:"existing"`
}

type importConflictResponse struct {
	New       []recordSummary `json:"new"`
	Conflicts []conflictDTO   `json:"conflicts"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatOf(header.Filename)
	}

	records, err := h.importSvc.Import(format, file)
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	result, err := h.engine.Import(r.Context(), records)
	if err != nil {
		render.Error(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]recordSummary, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, rec := range result.New {
			resp.New = append(resp.New, toSummary(rec))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toSummary(c.Incoming),
				Existing: toSummary(c.Existing),
			})
		}

		render.JSON(w, http.StatusConflict, resp)

		return
	}

	resp := importSuccessResponse{
		Imported: len(result.Imported),
		Records:  make([]recordSummary, 0, len(result.Imported)),
	}

	for _, rec := range result.Imported {
		resp.Records = append(resp.Records, toSummary(rec))
	}

	render.JSON(w, http.StatusCreated, resp)
}

func toSummary(r record.Record) recordSummary {
	return recordSummary{
		ID:        r.ID,
		Row:       r.Row,
		Type:      r.Type,
		Requester: r.Requester,
		Purpose:   r.Purpose,
		Amount:    r.RequestedAmount,
		Stage:     r.Stage(),
	}
}
