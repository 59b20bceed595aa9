package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
	"github.com/qianji-dev/store-scheduler/backend/internal/scheduler"
)

// snapshotFor 为约束引擎装配某个员工的数据快照。
// 班次的读取范围要覆盖候选日期所在的 ISO 周和之前 7 天，
// 周上限和最小休息的判断才不会漏掉数据。
func (h *Handler) snapshotFor(employee *domain.Employee, date time.Time, reference *domain.Shift) (*scheduler.Snapshot, error) {
	weekStart := scheduler.WeekStart(date)
	from := date.AddDate(0, 0, -7)
	if weekStart.Before(from) {
		from = weekStart
	}
	to := weekStart.AddDate(0, 0, 7)

	shifts, err := h.repository.GetShiftsByEmployeeBetween(employee.ID, from, to)
	if err != nil {
		return nil, err
	}
	windows, err := h.repository.GetWindowsByEmployee(employee.ID)
	if err != nil {
		return nil, err
	}

	return &scheduler.Snapshot{
		Employee:  employee,
		Shifts:    shifts,
		Windows:   windows,
		Reference: reference,
	}, nil
}

// evaluate 运行约束引擎并把拒绝结果写回响应，接受时返回 true
func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, op *scheduler.Operation, snap *scheduler.Snapshot) bool {
	err := h.engine.Evaluate(op, snap)
	if err == nil {
		return true
	}

	var v *scheduler.Violation
	if errors.As(err, &v) {
		h.violationResponse(w, r, v)
	} else {
		h.internalServerError(w, r, err)
	}
	return false
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64  `json:"employeeID" validate:"required"`
		Date       string `json:"date" validate:"required"`
		StartTime  string `json:"startTime" validate:"required"`
		EndTime    string `json:"endTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := scheduler.ParseDate(req.Date, h.loc)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	employee, err := h.repository.GetEmployeeByID(req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)
	if !authCtx.CanManage(employee.StoreID) {
		h.errorResponse(w, r, "无权管理其他门店的排班")
		return
	}
	if !employee.IsActive {
		h.errorResponse(w, r, "员工已离职")
		return
	}

	snap, err := h.snapshotFor(employee, date, nil)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	op := scheduler.NewCreateOperation(req.EmployeeID, req.Date, req.StartTime, req.EndTime)
	if !h.evaluate(w, r, op, snap) {
		return
	}

	shift := &domain.Shift{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	if err := h.repository.CreateShift(shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shifts_no_overlap":
				// 并发提交和其他班次撞在了一起，排他约束兜底
				h.errorResponse(w, r, "班次时间与已有班次重叠，请刷新后重试")
			case "shifts_employee_id_fkey":
				h.errorResponse(w, r, "员工不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishNotification(r, "shift_created", domain.ShiftChangedData{
		ShiftID:    shift.ID,
		EmployeeID: shift.EmployeeID,
		Date:       shift.Date,
		StartTime:  shift.StartTime,
		EndTime:    shift.EndTime,
	})
	h.bumpReportVersion(employee.StoreID)

	h.successResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		EmployeeID *int64  `json:"employeeID"`
		Date       *string `json:"date"`
		StartTime  *string `json:"startTime"`
		EndTime    *string `json:"endTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 未指定的字段沿用班次的当前值
	targetEmployeeID := shift.EmployeeID
	if req.EmployeeID != nil {
		targetEmployeeID = *req.EmployeeID
	}
	targetDate := shift.Date
	if req.Date != nil {
		targetDate = *req.Date
	}

	date, err := scheduler.ParseDate(targetDate, h.loc)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	employee, err := h.repository.GetEmployeeByID(targetEmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)
	if !authCtx.CanManage(employee.StoreID) {
		h.errorResponse(w, r, "无权管理其他门店的排班")
		return
	}
	if !employee.IsActive {
		h.errorResponse(w, r, "员工已离职")
		return
	}

	snap, err := h.snapshotFor(employee, date, shift)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	op := scheduler.NewMoveOperation(shift.ID, req.EmployeeID, req.Date, req.StartTime, req.EndTime)
	if !h.evaluate(w, r, op, snap) {
		return
	}

	shift.EmployeeID = targetEmployeeID
	shift.Date = targetDate
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}

	if err := h.repository.UpdateShift(shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shifts_no_overlap":
				h.errorResponse(w, r, "班次时间与已有班次重叠，请刷新后重试")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			// 版本冲突，说明班次刚刚被其他人改过
			h.errorResponse(w, r, "班次已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishNotification(r, "shift_updated", domain.ShiftChangedData{
		ShiftID:    shift.ID,
		EmployeeID: shift.EmployeeID,
		Date:       shift.Date,
		StartTime:  shift.StartTime,
		EndTime:    shift.EndTime,
	})
	h.bumpReportVersion(employee.StoreID)

	h.successResponse(w, r, "修改班次成功", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	employee, err := h.repository.GetEmployeeByID(shift.EmployeeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)
	if !authCtx.CanManage(employee.StoreID) {
		h.errorResponse(w, r, "无权管理其他门店的排班")
		return
	}

	// 删除也走一遍引擎，保持所有变更入口的裁决路径一致
	snap := &scheduler.Snapshot{Employee: employee, Reference: shift}
	if !h.evaluate(w, r, scheduler.NewDeleteOperation(shift.ID), snap) {
		return
	}

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.publishNotification(r, "shift_deleted", domain.ShiftChangedData{
		ShiftID:    shift.ID,
		EmployeeID: shift.EmployeeID,
		Date:       shift.Date,
		StartTime:  shift.StartTime,
		EndTime:    shift.EndTime,
	})
	h.bumpReportVersion(employee.StoreID)

	h.successResponse(w, r, "删除班次成功", nil)
}

// GetStoreShifts 返回本门店某个日期范围内的班次，默认是当前 ISO 周
func (h *Handler) GetStoreShifts(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	now := time.Now().In(h.loc)
	from := scheduler.WeekStart(now)
	to := from.AddDate(0, 0, 7)

	var err error
	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		if from, err = scheduler.ParseDate(fromParam, h.loc); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		to = from.AddDate(0, 0, 7)
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		if to, err = scheduler.ParseDate(toParam, h.loc); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
	}
	if !from.Before(to) {
		h.errorResponse(w, r, "开始日期必须早于结束日期")
		return
	}

	shifts, err := h.repository.GetShiftsByStoreBetween(authCtx.StoreID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次成功", shifts)
}
