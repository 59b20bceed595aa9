package repository

import (
	"context"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

// GetOpenTimeEntry 返回员工当前未关闭的打卡记录，没有时返回 sql.ErrNoRows。
// 部分唯一索引 time_entries_one_open 保证每个员工至多只有一条未关闭的记录。
func (r *Repository) GetOpenTimeEntry(employeeID int64) (*domain.TimeEntry, error) {
	query := `
		SELECT id, clock_in, clock_out, version
		FROM time_entries
		WHERE employee_id = $1 AND clock_out IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	entry := &domain.TimeEntry{
		EmployeeID: employeeID,
	}

	dst := []any{&entry.ID, &entry.ClockIn, &entry.ClockOut, &entry.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, employeeID).Scan(dst...); err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *Repository) GetTimeEntriesByEmployeeBetween(employeeID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	query := `
		SELECT id, employee_id, clock_in, clock_out, version
		FROM time_entries
		WHERE employee_id = $1 AND clock_in >= $2 AND clock_in < $3
		ORDER BY clock_in
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry := &domain.TimeEntry{}
		dst := []any{&entry.ID, &entry.EmployeeID, &entry.ClockIn, &entry.ClockOut, &entry.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) CreateTimeEntry(entry *domain.TimeEntry) error {
	query := `
		INSERT INTO time_entries (employee_id, clock_in)
		VALUES ($1, $2)
		RETURNING id, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, entry.EmployeeID, entry.ClockIn).Scan(&entry.ID, &entry.Version); err != nil {
		return err
	}

	return nil
}

// CloseTimeEntry 给未关闭的记录补上下班打卡时刻
func (r *Repository) CloseTimeEntry(entry *domain.TimeEntry, clockOut time.Time) error {
	query := `
		UPDATE time_entries
		SET clock_out = $1, version = version + 1
		WHERE id = $2 AND clock_out IS NULL AND version = $3
		RETURNING clock_out, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, clockOut, entry.ID, entry.Version).Scan(&entry.ClockOut, &entry.Version); err != nil {
		return err
	}

	return nil
}
