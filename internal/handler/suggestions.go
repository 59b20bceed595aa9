package handler

import (
	"net/http"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
	"github.com/qianji-dev/store-scheduler/backend/internal/scheduler"
)

// GenerateSuggestions 为本门店生成一段日期范围内的排班建议。
// 建议只是候选，不会写库，店长确认后再通过创建班次接口逐条提交。
func (h *Handler) GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"startDate" validate:"required"`
		Days      int    `json:"days" validate:"required,min=1,max=31"`
		StartTime string `json:"startTime" validate:"required"`
		EndTime   string `json:"endTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := scheduler.ParseDate(req.StartDate, h.loc)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	shiftStart, err := scheduler.ParseClockTime(req.StartTime)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	shiftEnd, err := scheduler.ParseClockTime(req.EndTime)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if shiftStart >= shiftEnd {
		h.errorResponse(w, r, "开始时刻必须早于结束时刻")
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	employees, err := h.repository.GetEmployeesByStore(authCtx.StoreID, true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	windows, err := h.repository.GetWindowsByStore(authCtx.StoreID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 范围往前多取一个 ISO 周，周上限和休息间隔的判断要用到
	from := scheduler.WeekStart(startDate).AddDate(0, 0, -7)
	to := startDate.AddDate(0, 0, req.Days)
	existing, err := h.repository.GetShiftsByStoreBetween(authCtx.StoreID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	proposals := make([]*scheduler.Proposal, 0)
	for p := range h.generator.Generate(employees, windows, existing, startDate, req.Days, shiftStart, shiftEnd) {
		proposals = append(proposals, p)
	}

	h.successResponse(w, r, "生成排班建议成功", proposals)
}
