package scheduler

import "github.com/qianji-dev/store-scheduler/backend/internal/domain"

type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationMove   OperationKind = "move"
	OperationDelete OperationKind = "delete"
)

// Operation 是提交给约束引擎的候选班次变更。
// Move 中为 nil 的字段表示沿用被移动班次的当前值。
type Operation struct {
	Kind    OperationKind
	ShiftID int64 // Move 和 Delete 引用的班次 ID

	EmployeeID int64
	Date       string // 格式为 2006-01-02
	StartTime  string // 格式为 15:04
	EndTime    string // 格式为 15:04

	NewEmployeeID *int64
	NewDate       *string
	NewStartTime  *string
	NewEndTime    *string
}

func NewCreateOperation(employeeID int64, date, startTime, endTime string) *Operation {
	return &Operation{
		Kind:       OperationCreate,
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
	}
}

func NewMoveOperation(shiftID int64, employeeID *int64, date, startTime, endTime *string) *Operation {
	return &Operation{
		Kind:          OperationMove,
		ShiftID:       shiftID,
		NewEmployeeID: employeeID,
		NewDate:       date,
		NewStartTime:  startTime,
		NewEndTime:    endTime,
	}
}

func NewDeleteOperation(shiftID int64) *Operation {
	return &Operation{
		Kind:    OperationDelete,
		ShiftID: shiftID,
	}
}

// Snapshot 是约束引擎求值时使用的数据快照。引擎是纯函数，不持有任何数据，
// 快照由调用方在一次同步读中装配，因此同一个快照上重复求值的结果是确定的。
//
// Shifts 必须覆盖目标员工在候选日期所在 ISO 周、以及候选日期之前 7 天内的全部班次，
// 否则周上限和最小休息的判断会漏掉数据。Reference 是 Move/Delete 所引用的班次，
// 求值时引擎会把它从各项累计中排除。
type Snapshot struct {
	Employee  *domain.Employee
	Shifts    []*domain.Shift
	Windows   []*domain.AvailabilityWindow
	Reference *domain.Shift
}

// WindowFor 返回员工在某个星期几的可用时间窗，不存在时返回 nil
func (s *Snapshot) WindowFor(weekday int32) *domain.AvailabilityWindow {
	for _, w := range s.Windows {
		if w.Weekday == weekday {
			return w
		}
	}
	return nil
}
