package scheduler

import (
	"fmt"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

var weekdayNames = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// Engine 是排班约束引擎。对一个候选操作按固定顺序依次检查：
// 输入合法性、区间重叠、可用时间窗、单日工时上限、最小休息时长、每周工时上限，
// 第一条不满足的规则即拒绝，保证同样的输入总是产生同样的提示。
//
// 引擎本身不做任何写入，接受后由调用方负责提交。并发的提交路径需要由
// 调用方保证可串行化：重叠检查和插入必须在同一个数据库事务内完成，
// 否则两个同时通过校验的重叠班次都可能被写入。
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	return &Engine{loc: loc}
}

// Evaluate 对候选操作求值。接受时返回 nil；
// 违反业务规则时返回 *Violation；快照数据本身非法时返回普通错误。
// 对同一个快照重复求值的结果是确定且无副作用的，
// 因此建议生成器可以用它在模拟数据上做预检。
func (e *Engine) Evaluate(op *Operation, snap *Snapshot) error {
	if op == nil {
		return invalidInput("缺少候选操作")
	}
	if snap == nil || snap.Employee == nil {
		return invalidInput("缺少员工信息")
	}

	// 结构检查，同时把 Move 中未指定的字段回填为被移动班次的当前值
	var employeeID int64
	var dateStr, startStr, endStr string

	switch op.Kind {
	case OperationCreate:
		employeeID = op.EmployeeID
		dateStr = op.Date
		startStr = op.StartTime
		endStr = op.EndTime
	case OperationMove:
		ref := snap.Reference
		if ref == nil || ref.ID != op.ShiftID {
			return invalidInput("被移动的班次不存在")
		}

		employeeID = ref.EmployeeID
		dateStr = ref.Date
		startStr = ref.StartTime
		endStr = ref.EndTime
		if op.NewEmployeeID != nil {
			employeeID = *op.NewEmployeeID
		}
		if op.NewDate != nil {
			dateStr = *op.NewDate
		}
		if op.NewStartTime != nil {
			startStr = *op.NewStartTime
		}
		if op.NewEndTime != nil {
			endStr = *op.NewEndTime
		}
	case OperationDelete:
		if snap.Reference == nil || snap.Reference.ID != op.ShiftID {
			return invalidInput("被删除的班次不存在")
		}
		// 删除不会增加任何工时，也不会制造重叠，直接接受
		return nil
	default:
		return invalidInput("未知的操作类型 %q", op.Kind)
	}

	if employeeID <= 0 {
		return invalidInput("缺少员工")
	}
	if snap.Employee.ID != employeeID {
		return invalidInput("快照中的员工与候选班次的员工不一致")
	}

	date, err := ParseDate(dateStr, e.loc)
	if err != nil {
		return invalidInput("%v", err)
	}
	start, err := ParseClockTime(startStr)
	if err != nil {
		return invalidInput("%v", err)
	}
	end, err := ParseClockTime(endStr)
	if err != nil {
		return invalidInput("%v", err)
	}
	if start >= end {
		return invalidInput("班次的开始时刻必须早于结束时刻")
	}

	candidateMinutes := int(end - start)

	// 区间重叠检查：同一员工同一天的任意两个班次的 [start, end) 不允许相交
	for _, sh := range snap.Shifts {
		if e.excluded(sh, snap) || sh.EmployeeID != employeeID || sh.Date != dateStr {
			continue
		}

		exStart, exEnd, err := shiftClockTimes(sh)
		if err != nil {
			return err
		}

		if !(exEnd <= start || exStart >= end) {
			return &Violation{
				Rule: RuleOverlapConflict,
				Message: fmt.Sprintf("与 %s 的已有班次 %s-%s 时间重叠",
					dateStr, exStart, exEnd),
			}
		}
	}

	// 可用时间窗检查：没有时间窗的星期几视为当天不可排班
	weekday := int32(date.Weekday())
	win := snap.WindowFor(weekday)
	if win == nil {
		return &Violation{
			Rule:    RuleNoAvailabilityWindow,
			Message: fmt.Sprintf("员工在%s没有可用时间窗", weekdayNames[weekday]),
		}
	}

	winStart, err := ParseClockTime(win.StartTime)
	if err != nil {
		return fmt.Errorf("可用时间窗 %d 的时间数据非法: %w", win.ID, err)
	}
	winEnd, err := ParseClockTime(win.EndTime)
	if err != nil {
		return fmt.Errorf("可用时间窗 %d 的时间数据非法: %w", win.ID, err)
	}

	if start < winStart || end > winEnd {
		return &Violation{
			Rule: RuleOutsideAvailabilityWindow,
			Message: fmt.Sprintf("班次 %s-%s 超出了%s的可用时间窗 %s-%s",
				start, end, weekdayNames[weekday], winStart, winEnd),
		}
	}

	// 单日工时上限检查
	if win.MaxDayHours != nil {
		totalMinutes := candidateMinutes
		for _, sh := range snap.Shifts {
			if e.excluded(sh, snap) || sh.EmployeeID != employeeID || sh.Date != dateStr {
				continue
			}
			minutes, err := shiftMinutes(sh)
			if err != nil {
				return err
			}
			totalMinutes += minutes
		}

		// 比较使用未舍入的值，只在提示信息中做两位小数的舍入
		if float64(totalMinutes) > *win.MaxDayHours*60 {
			return &Violation{
				Rule: RuleDailyCapExceeded,
				Message: fmt.Sprintf("当天总工时 %.2f 小时超过了上限 %.2f 小时",
					float64(totalMinutes)/60, *win.MaxDayHours),
				Limit:  *win.MaxDayHours,
				Actual: float64(totalMinutes) / 60,
			}
		}
	}

	// 最小休息时长检查：找到结束时间不晚于候选开始时间的最近一个班次
	if win.MinRestHours != nil {
		candidateStart := start.On(date, e.loc)

		var lastEnd time.Time
		for _, sh := range snap.Shifts {
			if e.excluded(sh, snap) || sh.EmployeeID != employeeID {
				continue
			}

			shDate, err := ParseDate(sh.Date, e.loc)
			if err != nil {
				return fmt.Errorf("班次 %d 的日期数据非法: %w", sh.ID, err)
			}
			_, exEnd, err := shiftClockTimes(sh)
			if err != nil {
				return err
			}

			endAbs := exEnd.On(shDate, e.loc)
			if !endAbs.After(candidateStart) && endAbs.After(lastEnd) {
				lastEnd = endAbs
			}
		}

		if !lastEnd.IsZero() {
			gap := candidateStart.Sub(lastEnd).Hours()
			if gap < *win.MinRestHours {
				return &Violation{
					Rule: RuleInsufficientRest,
					Message: fmt.Sprintf("与上一个班次之间只有 %.2f 小时休息，少于要求的 %.2f 小时",
						gap, *win.MinRestHours),
					Limit:  *win.MinRestHours,
					Actual: gap,
				}
			}
		}
	}

	// 每周工时上限检查，一周按 ISO 周计算，即周一 00:00 到下周一 00:00
	if cap := snap.Employee.WeeklyHourCap; cap > 0 {
		weekStart := WeekStart(date)
		weekEnd := weekStart.AddDate(0, 0, 7)

		totalMinutes := candidateMinutes
		for _, sh := range snap.Shifts {
			if e.excluded(sh, snap) || sh.EmployeeID != employeeID {
				continue
			}

			shDate, err := ParseDate(sh.Date, e.loc)
			if err != nil {
				return fmt.Errorf("班次 %d 的日期数据非法: %w", sh.ID, err)
			}
			if shDate.Before(weekStart) || !shDate.Before(weekEnd) {
				continue
			}

			minutes, err := shiftMinutes(sh)
			if err != nil {
				return err
			}
			totalMinutes += minutes
		}

		if float64(totalMinutes) > cap*60 {
			return &Violation{
				Rule: RuleWeeklyCapExceeded,
				Message: fmt.Sprintf("本周总工时 %.2f 小时超过了每周上限 %.2f 小时",
					float64(totalMinutes)/60, cap),
				Limit:  cap,
				Actual: float64(totalMinutes) / 60,
			}
		}
	}

	return nil
}

// excluded 判断快照中的班次是不是 Move/Delete 所引用的那个班次本身
func (e *Engine) excluded(sh *domain.Shift, snap *Snapshot) bool {
	return snap.Reference != nil && sh.ID == snap.Reference.ID
}

func shiftClockTimes(sh *domain.Shift) (ClockTime, ClockTime, error) {
	start, err := ParseClockTime(sh.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("班次 %d 的时间数据非法: %w", sh.ID, err)
	}
	end, err := ParseClockTime(sh.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("班次 %d 的时间数据非法: %w", sh.ID, err)
	}
	return start, end, nil
}

func shiftMinutes(sh *domain.Shift) (int, error) {
	start, end, err := shiftClockTimes(sh)
	if err != nil {
		return 0, err
	}
	return int(end - start), nil
}
