package domain

import "time"

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusApproved SwapStatus = "approved"
	SwapStatusRejected SwapStatus = "rejected"
)

// SwapRequest 表示一次换班申请：申请人希望把自己的某个班次转给目标员工。
// 由申请人创建后处于 pending 状态，经有权限的管理者批准或驳回后进入终态，
// 终态后不允许再发生任何状态转移。
type SwapRequest struct {
	ID          int64      `json:"id"`
	ShiftID     int64      `json:"shiftID"`
	RequesterID int64      `json:"requesterID"`
	TargetID    int64      `json:"targetID"`
	Status      SwapStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt"`
	ResolvedBy  *int64     `json:"resolvedBy"`
	Version     int32      `json:"-"`
}

// IsResolved 表示申请是否已经进入终态
func (s *SwapRequest) IsResolved() bool {
	return s.Status != SwapStatusPending
}
