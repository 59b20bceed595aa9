package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

func (r *Repository) CreateSwapRequest(req *domain.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (shift_id, requester_id, target_id)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{req.ShiftID, req.RequesterID, req.TargetID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&req.ID, &req.Status, &req.CreatedAt, &req.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSwapRequestByID(id int64) (*domain.SwapRequest, error) {
	query := `
		SELECT shift_id, requester_id, target_id, status, created_at, resolved_at, resolved_by, version
		FROM swap_requests WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	req := &domain.SwapRequest{
		ID: id,
	}

	dst := []any{&req.ShiftID, &req.RequesterID, &req.TargetID, &req.Status, &req.CreatedAt, &req.ResolvedAt, &req.ResolvedBy, &req.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return req, nil
}

func (r *Repository) GetSwapRequestsByStore(storeID int64) ([]*domain.SwapRequest, error) {
	query := `
		SELECT sr.id, sr.shift_id, sr.requester_id, sr.target_id, sr.status, sr.created_at, sr.resolved_at, sr.resolved_by, sr.version
		FROM swap_requests sr
		JOIN employees e ON e.id = sr.requester_id
		WHERE e.store_id = $1
		ORDER BY sr.created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.SwapRequest, 0)
	for rows.Next() {
		req := &domain.SwapRequest{}
		dst := []any{&req.ID, &req.ShiftID, &req.RequesterID, &req.TargetID, &req.Status, &req.CreatedAt, &req.ResolvedAt, &req.ResolvedBy, &req.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// ApproveSwapRequest 在一个事务内完成班次的改派和申请状态的流转：
// 两者要么同时提交，要么同时回滚，不允许班次换了人而申请还停留在 pending，
// 反之亦然。申请已经被处理过时返回 ErrSwapAlreadyResolved。
func (r *Repository) ApproveSwapRequest(req *domain.SwapRequest, resolvedBy int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 只有还处于 pending 的申请允许流转，这里同时作为并发批准的闸门
	query := `
		UPDATE swap_requests
		SET status = $1, resolved_at = now(), resolved_by = $2, version = version + 1
		WHERE id = $3 AND status = $4
		RETURNING status, resolved_at, resolved_by, version
	`

	args := []any{domain.SwapStatusApproved, resolvedBy, req.ID, domain.SwapStatusPending}
	dst := []any{&req.Status, &req.ResolvedAt, &req.ResolvedBy, &req.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		if err == sql.ErrNoRows {
			return ErrSwapAlreadyResolved
		}
		return err
	}

	query = `
		UPDATE shifts
		SET employee_id = $1, version = version + 1
		WHERE id = $2
	`

	if _, err := tx.ExecContext(ctx, query, req.TargetID, req.ShiftID); err != nil {
		return err
	}

	return tx.Commit()
}

// RejectSwapRequest 驳回申请，不触碰班次
func (r *Repository) RejectSwapRequest(req *domain.SwapRequest, resolvedBy int64) error {
	query := `
		UPDATE swap_requests
		SET status = $1, resolved_at = now(), resolved_by = $2, version = version + 1
		WHERE id = $3 AND status = $4
		RETURNING status, resolved_at, resolved_by, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{domain.SwapStatusRejected, resolvedBy, req.ID, domain.SwapStatusPending}
	dst := []any{&req.Status, &req.ResolvedAt, &req.ResolvedBy, &req.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		if err == sql.ErrNoRows {
			return ErrSwapAlreadyResolved
		}
		return err
	}

	return nil
}
