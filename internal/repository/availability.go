package repository

import (
	"context"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

func (r *Repository) GetWindowsByEmployee(employeeID int64) ([]*domain.AvailabilityWindow, error) {
	query := `
		SELECT id, employee_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), max_day_hours, min_rest_hours, created_at, version
		FROM availability_windows
		WHERE employee_id = $1
		ORDER BY weekday
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]*domain.AvailabilityWindow, 0)
	for rows.Next() {
		w := &domain.AvailabilityWindow{}
		dst := []any{&w.ID, &w.EmployeeID, &w.Weekday, &w.StartTime, &w.EndTime, &w.MaxDayHours, &w.MinRestHours, &w.CreatedAt, &w.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return windows, nil
}

// GetWindowsByStore 按员工 ID 分组返回整个门店的可用时间窗，供建议生成器使用
func (r *Repository) GetWindowsByStore(storeID int64) (map[int64][]*domain.AvailabilityWindow, error) {
	query := `
		SELECT w.id, w.employee_id, w.weekday, to_char(w.start_time, 'HH24:MI'), to_char(w.end_time, 'HH24:MI'), w.max_day_hours, w.min_rest_hours, w.created_at, w.version
		FROM availability_windows w
		JOIN employees e ON e.id = w.employee_id
		WHERE e.store_id = $1
		ORDER BY w.employee_id, w.weekday
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make(map[int64][]*domain.AvailabilityWindow)
	for rows.Next() {
		w := &domain.AvailabilityWindow{}
		dst := []any{&w.ID, &w.EmployeeID, &w.Weekday, &w.StartTime, &w.EndTime, &w.MaxDayHours, &w.MinRestHours, &w.CreatedAt, &w.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		windows[w.EmployeeID] = append(windows[w.EmployeeID], w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return windows, nil
}

// UpsertWindow 创建或覆盖某个 (员工, 星期几) 的可用时间窗。
// 唯一约束保证每个 (员工, 星期几) 至多只有一条记录。
func (r *Repository) UpsertWindow(w *domain.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (employee_id, weekday, start_time, end_time, max_day_hours, min_rest_hours)
		VALUES ($1, $2, $3::time, $4::time, $5, $6)
		ON CONFLICT (employee_id, weekday) DO UPDATE
		SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			max_day_hours = EXCLUDED.max_day_hours,
			min_rest_hours = EXCLUDED.min_rest_hours,
			version = availability_windows.version + 1
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{w.EmployeeID, w.Weekday, w.StartTime, w.EndTime, w.MaxDayHours, w.MinRestHours}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.ID, &w.CreatedAt, &w.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteWindow(employeeID int64, weekday int32) error {
	query := `
		DELETE FROM availability_windows WHERE employee_id = $1 AND weekday = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, employeeID, weekday)
	if err != nil {
		return err
	}

	return nil
}
