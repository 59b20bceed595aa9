package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
	"github.com/qianji-dev/store-scheduler/backend/internal/scheduler"
)

// weekdayParam 解析 URL 中的星期几参数，0 是周日，6 是周六
func weekdayParam(r *http.Request) (int32, bool) {
	weekday, err := strconv.ParseInt(chi.URLParam(r, "weekday"), 10, 32)
	if err != nil || weekday < 0 || weekday > 6 {
		return 0, false
	}
	return int32(weekday), true
}

func (h *Handler) GetMyWindows(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	windows, err := h.repository.GetWindowsByEmployee(authCtx.EmployeeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可用时间成功", windows)
}

func (h *Handler) UpsertMyWindow(w http.ResponseWriter, r *http.Request) {
	weekday, ok := weekdayParam(r)
	if !ok {
		h.errorResponse(w, r, "星期几必须是 0 到 6 之间的整数")
		return
	}

	var req struct {
		StartTime    string   `json:"startTime" validate:"required"`
		EndTime      string   `json:"endTime" validate:"required"`
		MaxDayHours  *float64 `json:"maxDayHours" validate:"omitempty,gt=0"`
		MinRestHours *float64 `json:"minRestHours" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	start, err := scheduler.ParseClockTime(req.StartTime)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	end, err := scheduler.ParseClockTime(req.EndTime)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if start >= end {
		h.errorResponse(w, r, "开始时刻必须早于结束时刻")
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	window := &domain.AvailabilityWindow{
		EmployeeID:   authCtx.EmployeeID,
		Weekday:      weekday,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxDayHours:  req.MaxDayHours,
		MinRestHours: req.MinRestHours,
	}

	if err := h.repository.UpsertWindow(window); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存可用时间成功", window)
}

// DeleteMyWindow 删除某个星期几的可用时间窗。
// 删除后该天不再可排班，已有的班次不会被联动清理。
func (h *Handler) DeleteMyWindow(w http.ResponseWriter, r *http.Request) {
	weekday, ok := weekdayParam(r)
	if !ok {
		h.errorResponse(w, r, "星期几必须是 0 到 6 之间的整数")
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	if err := h.repository.DeleteWindow(authCtx.EmployeeID, weekday); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除可用时间成功", nil)
}
