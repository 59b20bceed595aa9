package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
	"github.com/qianji-dev/store-scheduler/backend/internal/repository"
	"github.com/qianji-dev/store-scheduler/backend/internal/scheduler"
)

func (h *Handler) CreateSwapRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShiftID  int64 `json:"shiftID" validate:"required"`
		TargetID int64 `json:"targetID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	shift, err := h.repository.GetShiftByID(req.ShiftID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	// 只能申请转出自己的班次
	if shift.EmployeeID != authCtx.EmployeeID {
		h.errorResponse(w, r, "只能为自己的班次发起换班申请")
		return
	}
	if shift.EmployeeID == req.TargetID {
		h.errorResponse(w, r, "不能把班次转给自己")
		return
	}

	target, err := h.repository.GetEmployeeByID(req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "目标员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if target.StoreID != authCtx.StoreID {
		h.errorResponse(w, r, "不能跨门店换班")
		return
	}
	if !target.IsActive {
		h.errorResponse(w, r, "目标员工已离职")
		return
	}

	swap := &domain.SwapRequest{
		ShiftID:     req.ShiftID,
		RequesterID: authCtx.EmployeeID,
		TargetID:    req.TargetID,
	}
	if err := h.repository.CreateSwapRequest(swap); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.publishNotification(r, "swap_requested", domain.SwapResolvedData{
		SwapRequestID: swap.ID,
		ShiftID:       swap.ShiftID,
		RequesterID:   swap.RequesterID,
		TargetID:      swap.TargetID,
		Status:        string(swap.Status),
	})

	h.successResponse(w, r, "发起换班申请成功", swap)
}

func (h *Handler) GetStoreSwapRequests(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	requests, err := h.repository.GetSwapRequestsByStore(authCtx.StoreID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 普通店员只能看到和自己有关的申请
	if authCtx.Role == domain.RoleStaff {
		mine := make([]*domain.SwapRequest, 0)
		for _, req := range requests {
			if req.RequesterID == authCtx.EmployeeID || req.TargetID == authCtx.EmployeeID {
				mine = append(mine, req)
			}
		}
		requests = mine
	}

	h.successResponse(w, r, "获取换班申请成功", requests)
}

// ApproveSwapRequest 批准换班。批准前要用约束引擎对目标员工重新裁决一次，
// 申请创建到批准之间目标员工的排班可能已经变了。
func (h *Handler) ApproveSwapRequest(w http.ResponseWriter, r *http.Request) {
	swap := r.Context().Value(SwapRequestCtx).(*domain.SwapRequest)

	if swap.IsResolved() {
		h.errorResponse(w, r, "该申请已被处理")
		return
	}

	shift, err := h.repository.GetShiftByID(swap.ShiftID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "申请对应的班次已不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	// 申请创建后班次可能已经被改派，此时申请失去意义
	if shift.EmployeeID != swap.RequesterID {
		h.errorResponse(w, r, "班次已不再属于申请人，无法批准")
		return
	}

	target, err := h.repository.GetEmployeeByID(swap.TargetID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !target.IsActive {
		h.errorResponse(w, r, "目标员工已离职，无法批准")
		return
	}

	date, err := scheduler.ParseDate(shift.Date, h.loc)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	snap, err := h.snapshotFor(target, date, shift)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	op := scheduler.NewMoveOperation(shift.ID, &swap.TargetID, nil, nil, nil)
	if !h.evaluate(w, r, op, snap) {
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)
	if err := h.repository.ApproveSwapRequest(swap, authCtx.EmployeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapAlreadyResolved):
			h.errorResponse(w, r, "该申请已被处理")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishNotification(r, "swap_resolved", domain.SwapResolvedData{
		SwapRequestID: swap.ID,
		ShiftID:       swap.ShiftID,
		RequesterID:   swap.RequesterID,
		TargetID:      swap.TargetID,
		Status:        string(swap.Status),
	})
	h.bumpReportVersion(target.StoreID)

	h.successResponse(w, r, "批准换班申请成功", swap)
}

func (h *Handler) RejectSwapRequest(w http.ResponseWriter, r *http.Request) {
	swap := r.Context().Value(SwapRequestCtx).(*domain.SwapRequest)

	if swap.IsResolved() {
		h.errorResponse(w, r, "该申请已被处理")
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)
	if err := h.repository.RejectSwapRequest(swap, authCtx.EmployeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapAlreadyResolved):
			h.errorResponse(w, r, "该申请已被处理")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishNotification(r, "swap_resolved", domain.SwapResolvedData{
		SwapRequestID: swap.ID,
		ShiftID:       swap.ShiftID,
		RequesterID:   swap.RequesterID,
		TargetID:      swap.TargetID,
		Status:        string(swap.Status),
	})

	h.successResponse(w, r, "驳回换班申请成功", swap)
}
