package domain

import "time"

// AvailabilityWindow 表示员工在某个星期几愿意工作的时间段。
// 每个 (员工, 星期几) 至多只有一条记录；某个星期几没有记录时视为当天不可排班。
type AvailabilityWindow struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employeeID"`
	Weekday      int32     `json:"weekday"`   // 0 表示周日，6 表示周六
	StartTime    string    `json:"startTime"` // 格式为 15:04
	EndTime      string    `json:"endTime"`   // 格式为 15:04
	MaxDayHours  *float64  `json:"maxDayHours"`  // 当天排班工时上限，为 nil 时表示不限制
	MinRestHours *float64  `json:"minRestHours"` // 与上一个班次之间的最小休息时长，为 nil 时表示不限制
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
