package record

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fundflow/internal/http/auth"
	"github.com/MrJamesThe3rd/fundflow/internal/http/render"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type Handler struct {
	engine *workflow.Engine
}

func NewHandler(engine *workflow.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(auth.RoleApprover, auth.RoleAdmin))

		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/decline", h.decline)
	})

	// Paying out and settling money is kept apart from approving it.
	r.Group(func(r chi.Router) {
		r.Use(auth.Require(auth.RoleAdmin))

		r.Post("/direct", h.recordDirect)
		r.Post("/{id}/payment", h.issuePayment)
		r.Post("/{id}/liquidation", h.liquidate)
	})
}

type submitRequest struct {
	Type             record.Type `json:"type"`
	Category         string      `json:"category"`
	Requester        string      `json:"requester"`
	Project          string      `json:"project"`
	BudgetLine       string      `json:"budget_line"`
	Purpose          string      `json:"purpose"`
	Detail           string      `json:"detail"`
	RequestedAmount  int64       `json:"requested_amount"`
	RelatedRequestID string      `json:"related_request_id"`
	Supplier         string      `json:"supplier"`
	Contribution     string      `json:"contribution"`
	Remarks          string      `json:"remarks"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	rec, err := h.engine.Submit(r.Context(), workflow.Draft{
		Type:             req.Type,
		Category:         req.Category,
		Requester:        requesterFor(r, req.Requester),
		Project:          req.Project,
		BudgetLine:       req.BudgetLine,
		Purpose:          req.Purpose,
		Detail:           req.Detail,
		RequestedAmount:  req.RequestedAmount,
		RelatedRequestID: req.RelatedRequestID,
		Supplier:         req.Supplier,
		Contribution:     req.Contribution,
		Remarks:          req.Remarks,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(rec))
}

type directRequest struct {
	Type         record.Type `json:"type"`
	Category     string      `json:"category"`
	Requester    string      `json:"requester"`
	Project      string      `json:"project"`
	BudgetLine   string      `json:"budget_line"`
	Purpose      string      `json:"purpose"`
	Detail       string      `json:"detail"`
	Amount       int64       `json:"amount"`
	Method       string      `json:"payment_method"`
	InvoiceRef   string      `json:"invoice_ref"`
	Supplier     string      `json:"supplier"`
	Contribution string      `json:"contribution"`
	Remarks      string      `json:"remarks"`
}

func (h *Handler) recordDirect(w http.ResponseWriter, r *http.Request) {
	var req directRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	rec, err := h.engine.RecordDirect(r.Context(), workflow.DirectDraft{
		Type:         req.Type,
		Category:     req.Category,
		Requester:    req.Requester,
		Project:      req.Project,
		BudgetLine:   req.BudgetLine,
		Purpose:      req.Purpose,
		Detail:       req.Detail,
		Amount:       req.Amount,
		Method:       req.Method,
		InvoiceRef:   req.InvoiceRef,
		Supplier:     req.Supplier,
		Contribution: req.Contribution,
		Remarks:      req.Remarks,
	})
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(rec))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := workflow.ListFilter{
		Requester: requesterFor(r, q.Get("requester")),
		Project:   q.Get("project"),
	}

	if s := q.Get("stage"); s != "" {
		stage, ok := record.ParseStage(s)
		if !ok {
			render.BadRequest(w, "unknown stage "+s)
			return
		}

		filter.Stage = &stage
	}

	records, err := h.engine.List(r.Context(), filter)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(records))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.engine.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, err)
		return
	}

	if actor, ok := auth.FromContext(r.Context()); ok && actor.Role == auth.RoleRequester &&
		!strings.EqualFold(rec.Requester, actor.Name) {
		render.Error(w, workflow.ErrNotFound)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(rec))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.Approve)
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.Decline)
}

type paymentRequest struct {
	Method string `json:"method"`
}

func (h *Handler) issuePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	rec, err := h.engine.IssuePayment(r.Context(), chi.URLParam(r, "id"), req.Method)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(rec))
}

type liquidationRequest struct {
	Amount     int64  `json:"amount"`
	InvoiceRef string `json:"invoice_ref"`
}

func (h *Handler) liquidate(w http.ResponseWriter, r *http.Request) {
	var req liquidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	rec, err := h.engine.Liquidate(r.Context(), chi.URLParam(r, "id"), req.Amount, req.InvoiceRef)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(rec))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (record.Record, error)) {
	rec, err := apply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(rec))
}

// Summary serves dashboard totals and counts. Requesters get their own counts without totals.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summarize(r.Context(), requesterFor(r, r.URL.Query().Get("requester")))
	if err != nil {
		render.Error(w, err)
		return
	}

	if actor, ok := auth.FromContext(r.Context()); ok && actor.Role == auth.RoleRequester {
		summary.Totals = nil
	}

	render.JSON(w, http.StatusOK, summary)
}

// requesterFor pins requesters to themselves; other roles may act for anyone.
func requesterFor(r *http.Request, requested string) string {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		return requested
	}

	if actor.Role == auth.RoleRequester {
		return actor.Name
	}

	if requested == "" && r.Method == http.MethodPost {
		return actor.Name
	}

	return requested
}
