package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/payrollhq/payroll-engine/internal/domain"
	"github.com/payrollhq/payroll-engine/internal/service"
	"github.com/payrollhq/payroll-engine/pkg/response"
)

type AdvanceHandler struct {
	advance    *service.AdvanceService
	settlement *service.SettlementService
	validator  *validator.Validate
}

func NewAdvanceHandler(advance *service.AdvanceService, settlement *service.SettlementService) *AdvanceHandler {
	return &AdvanceHandler{
		advance:    advance,
		settlement: settlement,
		validator:  newValidator(),
	}
}

// RequestAdvance handles POST /advances
func (h *AdvanceHandler) RequestAdvance(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	advance, err := h.advance.RequestAdvance(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, advance)
}

// GetAdvance handles GET /advances/{advanceId}
func (h *AdvanceHandler) GetAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := advanceID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	advance, err := h.advance.GetAdvance(r.Context(), id)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, advance)
}

// ApproveAdvance handles POST /advances/{advanceId}/approve
func (h *AdvanceHandler) ApproveAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := advanceID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req domain.ApproveAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	advance, err := h.advance.ApproveAdvance(r.Context(), id, req.ApproverID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, advance)
}

// RejectAdvance handles POST /advances/{advanceId}/reject
func (h *AdvanceHandler) RejectAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := advanceID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req domain.RejectAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	advance, err := h.advance.RejectAdvance(r.Context(), id, req.ApproverID, req.RejectionReason)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, advance)
}

// MarkPaid handles POST /advances/{advanceId}/pay
func (h *AdvanceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := advanceID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req domain.MarkAdvancePaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	advance, err := h.advance.MarkAdvancePaid(r.Context(), id, req.PaymentMethod, req.DeductionStartMonth)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, advance)
}

// DeleteAdvance handles DELETE /advances/{advanceId}
func (h *AdvanceHandler) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := advanceID(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.advance.DeleteAdvance(r.Context(), id); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.NoContent(w)
}

// ListAdvances handles GET /employees/{employeeId}/advances
func (h *AdvanceHandler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]

	advances, err := h.advance.GetAdvancesByEmployee(r.Context(), employeeID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.PendingAdvancesResponse{
		EmployeeID: employeeID,
		Advances:   advances,
	})
}

// PendingAdvances handles GET /employees/{employeeId}/advances/pending
func (h *AdvanceHandler) PendingAdvances(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]

	advances, err := h.settlement.GetPendingAdvances(r.Context(), employeeID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.PendingAdvancesResponse{
		EmployeeID: employeeID,
		Advances:   advances,
	})
}

// Outstanding handles GET /employees/{employeeId}/advances/outstanding
func (h *AdvanceHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]

	total, err := h.settlement.GetTotalOutstanding(r.Context(), employeeID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.OutstandingResponse{
		EmployeeID:  employeeID,
		Outstanding: total,
	})
}

func advanceID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["advanceId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid advance id %q", raw)
	}
	return id, nil
}
