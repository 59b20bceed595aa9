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

// ClockIn 为当前员工开启一条打卡记录。
// 同一员工已有未关闭记录时拒绝，兜底由部分唯一索引保证。
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	entry := &domain.TimeEntry{
		EmployeeID: authCtx.EmployeeID,
		ClockIn:    time.Now().In(h.loc),
	}

	if err := h.repository.CreateTimeEntry(entry); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "time_entries_one_open":
			h.errorResponse(w, r, "已有未结束的打卡记录，请先打下班卡")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "上班打卡成功", entry)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	entry, err := h.repository.GetOpenTimeEntry(authCtx.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "没有未结束的打卡记录")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.CloseTimeEntry(entry, time.Now().In(h.loc)); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// 并发下班打卡，另一个请求已经关掉了这条记录
			h.errorResponse(w, r, "打卡记录已被关闭，请勿重复打卡")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.bumpReportVersion(authCtx.StoreID)

	h.successResponse(w, r, "下班打卡成功", entry)
}

// GetMyTimeEntries 返回当前员工某个日期范围内的打卡记录，默认是当前 ISO 周
func (h *Handler) GetMyTimeEntries(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.repository.GetTimeEntriesByEmployeeBetween(authCtx.EmployeeID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取打卡记录成功", entries)
}
