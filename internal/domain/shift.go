package domain

import "time"

// Shift 表示某个员工在某一天内的一段排班时间。
// 不变式: StartTime < EndTime；同一个员工在同一天内的任意两个班次的
// [StartTime, EndTime) 区间不允许重叠。
type Shift struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeID"`
	Date       string    `json:"date"`      // 格式为 2006-01-02
	StartTime  string    `json:"startTime"` // 格式为 15:04，必须补零
	EndTime    string    `json:"endTime"`   // 格式为 15:04，必须补零
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
