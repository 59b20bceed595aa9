package domain

import "time"

// TimeEntry 表示一条打卡记录。ClockOut 为 nil 时表示这条记录还未下班打卡，
// 工时统计时按照当前时刻截断。外部的打卡流程保证每个员工至多只有一条未关闭的记录。
type TimeEntry struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employeeID"`
	ClockIn    time.Time  `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut"`
	Version    int32      `json:"-"`
}

// IsOpen 表示这条记录是否还未下班打卡
func (t *TimeEntry) IsOpen() bool {
	return t.ClockOut == nil
}
