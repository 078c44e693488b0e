package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

type handlers struct {
	svc *Service
}

type createSessionRequest struct {
	Plan  string `json:"plan"`
	Cycle string `json:"cycle"`
}

type selectGatewayRequest struct {
	GatewayID string `json:"gateway_id"`
}

type applyDiscountRequest struct {
	Code string `json:"code"`
}

type setTermsRequest struct {
	Accepted bool `json:"accepted"`
}

type submitResponse struct {
	Phase       checkout.Phase `json:"phase"`
	RedirectURL string         `json:"redirect_url,omitempty"`
	PaymentID   string         `json:"payment_id,omitempty"`
	Message     string         `json:"message,omitempty"`
	State       StateView      `json:"state"`
}

type discountResponse struct {
	Valid   bool      `json:"valid"`
	Message string    `json:"message,omitempty"`
	State   StateView `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Plan == "" {
		writeError(w, http.StatusBadRequest, errors.New("plan is required"))
		return
	}

	id, orch, err := h.svc.CreateSession(r.Context(), req.Plan, checkout.ParseCycle(req.Cycle))
	if err != nil && !errors.Is(err, checkout.ErrCatalogUnavailable) && !errors.Is(err, checkout.ErrNoGateways) && !errors.Is(err, checkout.ErrPlanNotFound) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	// Load failures still produce a session so the client can render the
	// load error state and its message.
	writeJSON(w, http.StatusCreated, buildView(id, orch.State(), orch.Quote()))
}

func (h *handlers) getState(w http.ResponseWriter, r *http.Request) {
	id, orch, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildView(id, orch.State(), orch.Quote()))
}

func (h *handlers) selectGateway(w http.ResponseWriter, r *http.Request) {
	id, orch, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectGatewayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := orch.SelectGateway(r.Context(), req.GatewayID); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildView(id, orch.State(), orch.Quote()))
}

func (h *handlers) applyDiscount(w http.ResponseWriter, r *http.Request) {
	id, orch, ok := h.session(w, r)
	if !ok {
		return
	}
	var req applyDiscountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := orch.ApplyDiscount(r.Context(), req.Code)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	// Rejected codes are not errors; the result carries the rejection
	// message for the client to display.
	writeJSON(w, http.StatusOK, discountResponse{
		Valid:   result.Valid,
		Message: result.Message,
		State:   buildView(id, orch.State(), orch.Quote()),
	})
}

func (h *handlers) removeDiscount(w http.ResponseWriter, r *http.Request) {
	id, orch, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := orch.RemoveDiscount(r.Context()); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildView(id, orch.State(), orch.Quote()))
}

func (h *handlers) setTerms(w http.ResponseWriter, r *http.Request) {
	id, orch, ok := h.session(w, r)
	if !ok {
		return
	}
	var req setTermsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := orch.SetTermsAccepted(r.Context(), req.Accepted); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildView(id, orch.State(), orch.Quote()))
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	id, orch, ok := h.session(w, r)
	if !ok {
		return
	}
	outcome, err := orch.Submit(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Phase:       outcome.Phase,
		RedirectURL: outcome.RedirectURL,
		PaymentID:   outcome.PaymentID,
		Message:     outcome.Message,
		State:       buildView(id, orch.State(), orch.Quote()),
	})
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) (uuid.UUID, *checkout.Orchestrator, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid session id"))
		return uuid.Nil, nil, false
	}
	orch, err := h.svc.Session(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return uuid.Nil, nil, false
	}
	return id, orch, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeMappedError translates orchestrator sentinel errors to HTTP status
// codes.
func writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrGatewayNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, checkout.ErrNotReady),
		errors.Is(err, checkout.ErrSubmitNotAllowed),
		errors.Is(err, checkout.ErrValidationPending):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
