package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

func floatPtr(f float64) *float64 {
	return &f
}

func testEmployee() *domain.Employee {
	return &domain.Employee{
		ID:            1,
		FullName:      "王伟",
		StoreID:       1,
		WeeklyHourCap: 40,
	}
}

// window 构造某个星期几的可用时间窗
func window(weekday int32, start, end string) *domain.AvailabilityWindow {
	return &domain.AvailabilityWindow{
		ID:         int64(weekday) + 1,
		EmployeeID: 1,
		Weekday:    weekday,
		StartTime:  start,
		EndTime:    end,
	}
}

func shift(id int64, date, start, end string) *domain.Shift {
	return &domain.Shift{
		ID:         id,
		EmployeeID: 1,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
	}
}

func assertAccepted(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("候选应当被接受，实际返回: %v", err)
	}
}

func assertRejected(t *testing.T, err error, rule Rule) {
	t.Helper()
	if err == nil {
		t.Fatalf("候选应当被拒绝，规则 %s", rule)
	}
	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("期望 *Violation，实际返回: %v", err)
	}
	if v.Rule != rule {
		t.Fatalf("期望规则 %s，实际为 %s (%s)", rule, v.Rule, v.Message)
	}
}

// 2026-01-05 是周一
func TestEvaluateWithinAvailabilityWindow(t *testing.T) {
	engine := NewEngine(time.UTC)
	snap := &Snapshot{
		Employee: testEmployee(),
		Windows:  []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}

	// 完全落在时间窗内
	err := engine.Evaluate(NewCreateOperation(1, "2026-01-05", "09:00", "17:00"), snap)
	assertAccepted(t, err)

	// 超出时间窗
	err = engine.Evaluate(NewCreateOperation(1, "2026-01-05", "16:00", "20:00"), snap)
	assertRejected(t, err, RuleOutsideAvailabilityWindow)
}

func TestEvaluateOverlapConflict(t *testing.T) {
	engine := NewEngine(time.UTC)
	snap := &Snapshot{
		Employee: testEmployee(),
		Shifts:   []*domain.Shift{shift(10, "2026-01-05", "09:00", "13:00")},
		Windows:  []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}

	// [12:00, 16:00) 与 [09:00, 13:00) 在 [12:00, 13:00) 相交
	err := engine.Evaluate(NewCreateOperation(1, "2026-01-05", "12:00", "16:00"), snap)
	assertRejected(t, err, RuleOverlapConflict)

	// 半开区间：首尾相接不算重叠
	err = engine.Evaluate(NewCreateOperation(1, "2026-01-05", "13:00", "17:00"), snap)
	assertAccepted(t, err)
}

func TestEvaluateWeeklyCapExceeded(t *testing.T) {
	engine := NewEngine(time.UTC)
	// 本周已排 38 小时：周一到周四各 8 小时，周五 6 小时
	snap := &Snapshot{
		Employee: testEmployee(),
		Shifts: []*domain.Shift{
			shift(1, "2026-01-05", "09:00", "17:00"),
			shift(2, "2026-01-06", "09:00", "17:00"),
			shift(3, "2026-01-07", "09:00", "17:00"),
			shift(4, "2026-01-08", "09:00", "17:00"),
			shift(5, "2026-01-09", "09:00", "15:00"),
		},
		Windows: []*domain.AvailabilityWindow{window(6, "09:00", "17:00")},
	}

	// 再加 4 小时，38+4=42 > 40
	err := engine.Evaluate(NewCreateOperation(1, "2026-01-10", "09:00", "13:00"), snap)
	assertRejected(t, err, RuleWeeklyCapExceeded)

	var v *Violation
	errors.As(err, &v)
	if v.Actual != 42 || v.Limit != 40 {
		t.Errorf("期望 actual=42 limit=40，实际为 actual=%v limit=%v", v.Actual, v.Limit)
	}

	// 只加 2 小时，38+2=40 恰好等于上限，不算超出
	err = engine.Evaluate(NewCreateOperation(1, "2026-01-10", "09:00", "11:00"), snap)
	assertAccepted(t, err)
}

func TestEvaluateInsufficientRest(t *testing.T) {
	engine := NewEngine(time.UTC)
	win := window(2, "06:00", "17:00")
	win.MinRestHours = floatPtr(10)

	snap := &Snapshot{
		Employee: testEmployee(),
		Shifts:   []*domain.Shift{shift(1, "2026-01-05", "14:00", "22:00")},
		Windows: []*domain.AvailabilityWindow{
			window(1, "09:00", "22:00"),
			win,
		},
	}

	// 周一 22:00 下班，周二 06:00 上班，只休息了 8 小时
	err := engine.Evaluate(NewCreateOperation(1, "2026-01-06", "06:00", "10:00"), snap)
	assertRejected(t, err, RuleInsufficientRest)

	// 周二 08:00 上班休息了 10 小时，恰好满足
	err = engine.Evaluate(NewCreateOperation(1, "2026-01-06", "08:00", "12:00"), snap)
	assertAccepted(t, err)
}

func TestEvaluateNoAvailabilityWindow(t *testing.T) {
	engine := NewEngine(time.UTC)
	snap := &Snapshot{
		Employee: testEmployee(),
		Windows:  []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}

	// 周三没有时间窗，按严格策略拒绝
	err := engine.Evaluate(NewCreateOperation(1, "2026-01-07", "09:00", "12:00"), snap)
	assertRejected(t, err, RuleNoAvailabilityWindow)
}

func TestEvaluateDailyCapExceeded(t *testing.T) {
	engine := NewEngine(time.UTC)
	win := window(1, "08:00", "20:00")
	win.MaxDayHours = floatPtr(8)

	snap := &Snapshot{
		Employee: testEmployee(),
		Shifts:   []*domain.Shift{shift(1, "2026-01-05", "09:00", "13:00")},
		Windows:  []*domain.AvailabilityWindow{win},
	}

	// 4 + 4 = 8 小时不超出上限
	err := engine.Evaluate(NewCreateOperation(1, "2026-01-05", "13:00", "17:00"), snap)
	assertAccepted(t, err)

	// 4 + 4.1 小时，比较必须基于未舍入的值
	err = engine.Evaluate(NewCreateOperation(1, "2026-01-05", "13:00", "17:06"), snap)
	assertRejected(t, err, RuleDailyCapExceeded)
}

func TestEvaluateInvalidInput(t *testing.T) {
	engine := NewEngine(time.UTC)
	snap := &Snapshot{
		Employee: testEmployee(),
		Windows:  []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}

	tests := []struct {
		name string
		op   *Operation
	}{
		{"开始不早于结束", NewCreateOperation(1, "2026-01-05", "17:00", "09:00")},
		{"开始等于结束", NewCreateOperation(1, "2026-01-05", "09:00", "09:00")},
		{"日期非法", NewCreateOperation(1, "2026/01/05", "09:00", "12:00")},
		{"时刻未补零", NewCreateOperation(1, "2026-01-05", "9:00", "12:00")},
		{"缺少员工", NewCreateOperation(0, "2026-01-05", "09:00", "12:00")},
		{"移动不存在的班次", NewMoveOperation(99, nil, nil, nil, nil)},
		{"删除不存在的班次", NewDeleteOperation(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertRejected(t, engine.Evaluate(tt.op, snap), RuleInvalidInput)
		})
	}
}

func TestEvaluateMoveExcludesItself(t *testing.T) {
	engine := NewEngine(time.UTC)
	moved := shift(10, "2026-01-05", "09:00", "13:00")
	snap := &Snapshot{
		Employee:  testEmployee(),
		Shifts:    []*domain.Shift{moved},
		Reference: moved,
		Windows:   []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}

	// 原地不动：和自己重叠不算冲突
	err := engine.Evaluate(NewMoveOperation(10, nil, nil, nil, nil), snap)
	assertAccepted(t, err)

	// 改成和自己原来的区间部分重叠
	newStart, newEnd := "11:00", "15:00"
	err = engine.Evaluate(NewMoveOperation(10, nil, nil, &newStart, &newEnd), snap)
	assertAccepted(t, err)
}

func TestEvaluateDelete(t *testing.T) {
	engine := NewEngine(time.UTC)
	target := shift(10, "2026-01-05", "09:00", "13:00")
	snap := &Snapshot{
		Employee:  testEmployee(),
		Shifts:    []*domain.Shift{target},
		Reference: target,
	}

	// 删除不增加任何工时，直接接受
	assertAccepted(t, engine.Evaluate(NewDeleteOperation(10), snap))
}

func TestEvaluateRuleOrder(t *testing.T) {
	engine := NewEngine(time.UTC)
	// 候选同时违反重叠和时间窗两条规则时，必须先报告重叠
	snap := &Snapshot{
		Employee: testEmployee(),
		Shifts:   []*domain.Shift{shift(1, "2026-01-05", "16:00", "20:00")},
		Windows:  []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}

	err := engine.Evaluate(NewCreateOperation(1, "2026-01-05", "16:00", "21:00"), snap)
	assertRejected(t, err, RuleOverlapConflict)
}

func TestEvaluateIdempotent(t *testing.T) {
	engine := NewEngine(time.UTC)
	snap := &Snapshot{
		Employee: testEmployee(),
		Shifts:   []*domain.Shift{shift(1, "2026-01-05", "09:00", "13:00")},
		Windows:  []*domain.AvailabilityWindow{window(1, "09:00", "17:00")},
	}
	op := NewCreateOperation(1, "2026-01-05", "12:00", "16:00")

	first := engine.Evaluate(op, snap)
	second := engine.Evaluate(op, snap)

	assertRejected(t, first, RuleOverlapConflict)
	assertRejected(t, second, RuleOverlapConflict)
	if first.Error() != second.Error() {
		t.Errorf("同一快照上的两次求值结果不一致: %q 与 %q", first.Error(), second.Error())
	}
}
