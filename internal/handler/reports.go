package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
	"github.com/qianji-dev/store-scheduler/backend/internal/scheduler"
	"github.com/redis/go-redis/v9"
)

type hoursReport struct {
	EmployeeID int64   `json:"employeeID"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Source     string  `json:"source"`
	Hours      float64 `json:"hours"`
}

// GetHoursReport 汇总某个员工一段日期范围内的工时。
// source 取 scheduled 时按排班统计，取 worked 时按打卡统计。
// 结果按门店的报表版本号缓存，排班或打卡变化后版本号递增，缓存随之失效。
func (h *Handler) GetHoursReport(w http.ResponseWriter, r *http.Request) {
	authCtx := r.Context().Value(AuthCtxKey).(*domain.AuthContext)

	employeeID := authCtx.EmployeeID
	if param := r.URL.Query().Get("employeeID"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "员工 ID 必须是整数")
			return
		}
		employeeID = id
	}

	source := scheduler.HourSource(r.URL.Query().Get("source"))
	if source == "" {
		source = scheduler.SourceScheduled
	}
	if source != scheduler.SourceScheduled && source != scheduler.SourceWorked {
		h.errorResponse(w, r, "统计来源必须是 scheduled 或 worked")
		return
	}

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

	var storeID int64
	if employeeID == authCtx.EmployeeID {
		storeID = authCtx.StoreID
	} else {
		// 查别人的工时必须有管理对方门店的权限
		employee, err := h.repository.GetEmployeeByID(employeeID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "员工不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if !authCtx.CanManage(employee.StoreID) {
			h.errorResponse(w, r, "无权查看其他门店员工的工时")
			return
		}
		storeID = employee.StoreID
	}

	cacheKey := h.hoursReportCacheKey(storeID, employeeID, from, to, source)
	if cacheKey != "" {
		if report, ok := h.cachedHoursReport(cacheKey); ok {
			h.successResponse(w, r, "获取工时报表成功", report)
			return
		}
	}

	hours, err := h.aggregator.SumHours(employeeID, from, to, source)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	report := &hoursReport{
		EmployeeID: employeeID,
		From:       from.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
		Source:     string(source),
		Hours:      roundHours(hours),
	}

	if cacheKey != "" {
		h.storeHoursReport(cacheKey, report)
	}

	h.successResponse(w, r, "获取工时报表成功", report)
}

// hoursReportCacheKey 生成带版本号的缓存键。
// redis 不可用时返回空串，报表退化成直接查库。
func (h *Handler) hoursReportCacheKey(storeID, employeeID int64, from, to time.Time, source scheduler.HourSource) string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	version, err := h.redisClient.Get(ctx, reportVersionKey(storeID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("无法读取报表版本号", "store_id", storeID, "error", err)
			return ""
		}
		version = "0"
	}

	return fmt.Sprintf("hours_report_v%s_%d_%s_%s_%s", version, employeeID, from.Format("2006-01-02"), to.Format("2006-01-02"), source)
}

func (h *Handler) cachedHoursReport(key string) (*hoursReport, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	payload, err := h.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("无法读取工时报表缓存", "key", key, "error", err)
		}
		return nil, false
	}

	report := &hoursReport{}
	if err := json.Unmarshal(payload, report); err != nil {
		slog.Error("无法解析工时报表缓存", "key", key, "error", err)
		return nil, false
	}

	return report, true
}

func (h *Handler) storeHoursReport(key string, report *hoursReport) {
	payload, err := json.Marshal(report)
	if err != nil {
		slog.Error("无法序列化工时报表", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	expiration := time.Duration(h.config.Report.CacheExpiration) * time.Second
	if err := h.redisClient.Set(ctx, key, payload, expiration).Err(); err != nil {
		slog.Error("无法写入工时报表缓存", "key", key, "error", err)
	}
}
