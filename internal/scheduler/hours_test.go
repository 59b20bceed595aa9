package scheduler

import (
	"testing"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

type fakeShiftSource struct {
	shifts []*domain.Shift
}

func (f *fakeShiftSource) GetShiftsByEmployeeBetween(employeeID int64, from, to time.Time) ([]*domain.Shift, error) {
	result := make([]*domain.Shift, 0)
	for _, sh := range f.shifts {
		if sh.EmployeeID == employeeID {
			result = append(result, sh)
		}
	}
	return result, nil
}

type fakeTimeEntrySource struct {
	entries []*domain.TimeEntry
}

func (f *fakeTimeEntrySource) GetTimeEntriesByEmployeeBetween(employeeID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	result := make([]*domain.TimeEntry, 0)
	for _, entry := range f.entries {
		if entry.EmployeeID == employeeID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func day(s string) time.Time {
	date, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return date
}

func TestSumHoursScheduled(t *testing.T) {
	shifts := &fakeShiftSource{shifts: []*domain.Shift{
		shift(1, "2026-01-05", "09:00", "17:00"), // 8 小时
		shift(2, "2026-01-06", "09:00", "15:30"), // 6.5 小时
		shift(3, "2026-01-12", "09:00", "17:00"), // 落在窗口之外
	}}
	agg := NewAggregator(shifts, &fakeTimeEntrySource{}, time.UTC)

	// [周一, 下周一) 只统计本周的两个班次
	got, err := agg.SumHours(1, day("2026-01-05"), day("2026-01-12"), SourceScheduled)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if got != 14.5 {
		t.Errorf("排班工时 = %v, 期望 14.5", got)
	}
}

func TestSumHoursWorked(t *testing.T) {
	clockOut := day("2026-01-05").Add(12 * time.Hour) // 周一 12:00
	entries := &fakeTimeEntrySource{entries: []*domain.TimeEntry{
		{
			ID:         1,
			EmployeeID: 1,
			ClockIn:    day("2026-01-05").Add(8 * time.Hour), // 周一 08:00 到 12:00，4 小时
			ClockOut:   &clockOut,
		},
		{
			ID:         2,
			EmployeeID: 1,
			ClockIn:    day("2026-01-06").Add(9 * time.Hour), // 周二 09:00，还未下班打卡
		},
		{
			ID:         3,
			EmployeeID: 1,
			ClockIn:    day("2026-01-01").Add(9 * time.Hour), // 上班时刻在窗口外，不统计
			ClockOut:   &clockOut,
		},
	}}

	agg := NewAggregator(&fakeShiftSource{}, entries, time.UTC)
	// 固定"当前时刻"为周二 11:30，未关闭的记录按它截断，计 2.5 小时
	agg.now = func() time.Time {
		return day("2026-01-06").Add(11*time.Hour + 30*time.Minute)
	}

	got, err := agg.SumHours(1, day("2026-01-05"), day("2026-01-12"), SourceWorked)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if got != 6.5 {
		t.Errorf("实际工时 = %v, 期望 6.5", got)
	}

	// 幂等性：重复统计结果不变
	again, err := agg.SumHours(1, day("2026-01-05"), day("2026-01-12"), SourceWorked)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if again != got {
		t.Errorf("重复统计结果不一致: %v 与 %v", got, again)
	}
}

func TestSumHoursUnknownSource(t *testing.T) {
	agg := NewAggregator(&fakeShiftSource{}, &fakeTimeEntrySource{}, time.UTC)
	if _, err := agg.SumHours(1, day("2026-01-05"), day("2026-01-12"), HourSource("paycheck")); err == nil {
		t.Error("未知的工时来源应当返回错误")
	}
}
