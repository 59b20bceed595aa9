package scheduler

import (
	"fmt"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

// HourSource 指定工时统计的数据来源
type HourSource string

const (
	// SourceScheduled 统计排班工时，即班次时长之和
	SourceScheduled HourSource = "scheduled"
	// SourceWorked 统计实际打卡工时，未下班打卡的记录按当前时刻截断
	SourceWorked HourSource = "worked"
)

type ShiftSource interface {
	GetShiftsByEmployeeBetween(employeeID int64, from, to time.Time) ([]*domain.Shift, error)
}

type TimeEntrySource interface {
	GetTimeEntriesByEmployeeBetween(employeeID int64, from, to time.Time) ([]*domain.TimeEntry, error)
}

// Aggregator 在任意时间窗口内统计某个员工的工时。
// 统计是无副作用且幂等的：约束引擎和报表页都会反复调用它。
type Aggregator struct {
	shifts  ShiftSource
	entries TimeEntrySource
	loc     *time.Location
	now     func() time.Time // 测试时注入固定时刻
}

func NewAggregator(shifts ShiftSource, entries TimeEntrySource, loc *time.Location) *Aggregator {
	return &Aggregator{
		shifts:  shifts,
		entries: entries,
		loc:     loc,
		now:     time.Now,
	}
}

// SumHours 统计员工在 [from, to) 内的工时，返回未舍入的小时数。
// Scheduled 统计日期落在窗口内的班次；Worked 统计上班打卡时刻落在窗口内的记录。
func (a *Aggregator) SumHours(employeeID int64, from, to time.Time, source HourSource) (float64, error) {
	switch source {
	case SourceScheduled:
		return a.sumScheduled(employeeID, from, to)
	case SourceWorked:
		return a.sumWorked(employeeID, from, to)
	default:
		return 0, fmt.Errorf("未知的工时来源 %q", source)
	}
}

func (a *Aggregator) sumScheduled(employeeID int64, from, to time.Time) (float64, error) {
	shifts, err := a.shifts.GetShiftsByEmployeeBetween(employeeID, from, to)
	if err != nil {
		return 0, err
	}

	totalMinutes := 0
	for _, sh := range shifts {
		date, err := ParseDate(sh.Date, a.loc)
		if err != nil {
			return 0, fmt.Errorf("班次 %d 的日期数据非法: %w", sh.ID, err)
		}
		if date.Before(from) || !date.Before(to) {
			continue
		}

		minutes, err := shiftMinutes(sh)
		if err != nil {
			return 0, err
		}
		totalMinutes += minutes
	}

	return float64(totalMinutes) / 60, nil
}

func (a *Aggregator) sumWorked(employeeID int64, from, to time.Time) (float64, error) {
	entries, err := a.entries.GetTimeEntriesByEmployeeBetween(employeeID, from, to)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, entry := range entries {
		if entry.ClockIn.Before(from) || !entry.ClockIn.Before(to) {
			continue
		}

		end := a.now()
		if entry.ClockOut != nil {
			end = *entry.ClockOut
		}
		if end.Before(entry.ClockIn) {
			// 打卡数据异常时不让负值污染合计
			continue
		}

		total += end.Sub(entry.ClockIn).Hours()
	}

	return total, nil
}
