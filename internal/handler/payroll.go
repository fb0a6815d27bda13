package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/payrollhq/payroll-engine/internal/domain"
	"github.com/payrollhq/payroll-engine/internal/service"
	"github.com/payrollhq/payroll-engine/pkg/response"
)

type PayrollHandler struct {
	payroll    *service.PayrollService
	settlement *service.SettlementService
	validator  *validator.Validate
}

func NewPayrollHandler(payroll *service.PayrollService, settlement *service.SettlementService) *PayrollHandler {
	return &PayrollHandler{
		payroll:    payroll,
		settlement: settlement,
		validator:  newValidator(),
	}
}

// CreateSalaryRecord handles POST /salaries
func (h *PayrollHandler) CreateSalaryRecord(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSalaryRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	record, err := h.payroll.CreateSalaryRecord(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, domain.CreateSalaryRecordResponse{Record: record})
}

// GetSalaryRecord handles GET /salaries/{employeeId}/{year}/{month}
func (h *PayrollHandler) GetSalaryRecord(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, err := periodVars(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	record, err := h.payroll.GetSalaryRecord(r.Context(), employeeID, month, year)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, record)
}

// ApproveSalaryRecord handles POST /salaries/{employeeId}/{year}/{month}/approve
func (h *PayrollHandler) ApproveSalaryRecord(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payroll.ApproveSalaryRecord)
}

// PaySalaryRecord handles POST /salaries/{employeeId}/{year}/{month}/pay
func (h *PayrollHandler) PaySalaryRecord(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payroll.PaySalaryRecord)
}

// CancelSalaryRecord handles POST /salaries/{employeeId}/{year}/{month}/cancel
func (h *PayrollHandler) CancelSalaryRecord(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payroll.CancelSalaryRecord)
}

// SettlePeriod handles POST /salaries/{employeeId}/{year}/{month}/settle
func (h *PayrollHandler) SettlePeriod(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, err := periodVars(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := h.settlement.SettleAdvancesForPeriod(r.Context(), employeeID, month, year)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.SettlementResponse{
		Record:   result.Record,
		Advances: result.Advances,
	})
}

func (h *PayrollHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error),
) {
	employeeID, month, year, err := periodVars(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	record, err := apply(r.Context(), employeeID, month, year)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, record)
}

func periodVars(r *http.Request) (employeeID, month string, year int, err error) {
	vars := mux.Vars(r)
	employeeID = vars["employeeId"]
	month = vars["month"]

	year, err = strconv.Atoi(vars["year"])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid year %q", vars["year"])
	}

	return employeeID, month, year, nil
}
