package repository

import (
	"context"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

// 班次表上有排他约束 shifts_no_overlap：同一员工的两个班次的
// [开始, 结束) 时间区间不允许相交。约束引擎在快照上做的重叠检查
// 可能与并发提交产生先读后写的竞争，排他约束保证竞争中只有一个提交成功，
// 另一个会收到约束冲突错误。

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `
		SELECT employee_id, to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, version
		FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{&shift.EmployeeID, &shift.Date, &shift.StartTime, &shift.EndTime, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

func (r *Repository) GetShiftsByEmployeeBetween(employeeID int64, from, to time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT id, employee_id, to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, version
		FROM shifts
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, start_time
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShifts(rows)
}

func (r *Repository) GetShiftsByStoreBetween(storeID int64, from, to time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT s.id, s.employee_id, to_char(s.date, 'YYYY-MM-DD'), to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'), s.created_at, s.version
		FROM shifts s
		JOIN employees e ON e.id = s.employee_id
		WHERE e.store_id = $1 AND s.date >= $2 AND s.date < $3
		ORDER BY s.date, s.start_time, s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, storeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShifts(rows)
}

func (r *Repository) CreateShift(shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (employee_id, date, start_time, end_time)
		VALUES ($1, $2::date, $3::time, $4::time)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shift.EmployeeID, shift.Date, shift.StartTime, shift.EndTime}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateShift(shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			employee_id = $1,
			date = $2::date,
			start_time = $3::time,
			end_time = $4::time,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shift.EmployeeID, shift.Date, shift.StartTime, shift.EndTime, shift.ID, shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id int64) error {
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

type shiftRows interface {
	Next() bool
	Scan(dst ...any) error
	Err() error
}

func scanShifts(rows shiftRows) ([]*domain.Shift, error) {
	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{}
		dst := []any{&shift.ID, &shift.EmployeeID, &shift.Date, &shift.StartTime, &shift.EndTime, &shift.CreatedAt, &shift.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}
