package handler

import (
	"net/http"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

func (h *Handler) GetStoreEmployees(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	// 普通店员只能看到在职同事，管理者可以带参数查离职员工
	onlyActive := true
	if r.URL.Query().Get("includeInactive") == "true" && authCtx.Role != domain.RoleStaff {
		onlyActive = false
	}

	employees, err := h.repository.GetEmployeesByStore(authCtx.StoreID, onlyActive)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) GetEmployeeInfo(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	h.successResponse(w, r, "获取员工信息成功", employee)
}

func (h *Handler) GetEmployeeWindows(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	windows, err := h.repository.GetWindowsByEmployee(employee.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工可用时间成功", windows)
}
