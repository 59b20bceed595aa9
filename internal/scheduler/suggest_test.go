package scheduler

import (
	"testing"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

func suggestEmployees(n int) []*domain.Employee {
	employees := make([]*domain.Employee, 0, n)
	for i := 1; i <= n; i++ {
		employees = append(employees, &domain.Employee{
			ID:            int64(i),
			StoreID:       1,
			WeeklyHourCap: 40,
		})
	}
	return employees
}

// allWeekWindows 给员工生成整周的 09:00-17:00 可用时间窗
func allWeekWindows(employees []*domain.Employee) map[int64][]*domain.AvailabilityWindow {
	windows := make(map[int64][]*domain.AvailabilityWindow)
	for _, emp := range employees {
		for weekday := int32(0); weekday < 7; weekday++ {
			windows[emp.ID] = append(windows[emp.ID], &domain.AvailabilityWindow{
				ID:         emp.ID*10 + int64(weekday),
				EmployeeID: emp.ID,
				Weekday:    weekday,
				StartTime:  "09:00",
				EndTime:    "17:00",
			})
		}
	}
	return windows
}

func collect(seq func(func(*Proposal) bool)) []*Proposal {
	proposals := make([]*Proposal, 0)
	seq(func(p *Proposal) bool {
		proposals = append(proposals, p)
		return true
	})
	return proposals
}

// 7 天 3 个员工的批量建议，每一条都必须能独立通过约束引擎的校验，
// 校验时的快照要包含同批次中先生成的建议
func TestGenerateProposalsPassEvaluate(t *testing.T) {
	engine := NewEngine(time.UTC)
	gen := NewGenerator(engine, time.UTC)

	employees := suggestEmployees(3)
	windows := allWeekWindows(employees)
	start, _ := ParseClockTime("09:00")
	end, _ := ParseClockTime("17:00")

	proposals := collect(gen.Generate(employees, windows, nil, day("2026-01-05"), 7, start, end))

	if len(proposals) != 7 {
		t.Fatalf("期望 7 条建议，实际 %d 条", len(proposals))
	}

	// 逐条重放：每条建议都要能在"真实数据 + 之前的建议"这个快照上通过校验
	accumulated := make(map[int64][]*domain.Shift)
	for i, p := range proposals {
		var emp *domain.Employee
		for _, e := range employees {
			if e.ID == p.EmployeeID {
				emp = e
			}
		}
		if emp == nil {
			t.Fatalf("第 %d 条建议的员工 %d 不存在", i, p.EmployeeID)
		}

		op := NewCreateOperation(p.EmployeeID, p.Date, p.StartTime, p.EndTime)
		snap := &Snapshot{
			Employee: emp,
			Shifts:   accumulated[p.EmployeeID],
			Windows:  windows[p.EmployeeID],
		}
		if err := engine.Evaluate(op, snap); err != nil {
			t.Errorf("第 %d 条建议未通过校验: %v", i, err)
		}

		accumulated[p.EmployeeID] = append(accumulated[p.EmployeeID], &domain.Shift{
			ID:         int64(1000 + i),
			EmployeeID: p.EmployeeID,
			Date:       p.Date,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
		})
	}
}

// 轮转偏移保证工时相同的时候不会总是同一个员工被排在最前面
func TestGenerateBalancesEmployees(t *testing.T) {
	engine := NewEngine(time.UTC)
	gen := NewGenerator(engine, time.UTC)

	employees := suggestEmployees(3)
	windows := allWeekWindows(employees)
	start, _ := ParseClockTime("09:00")
	end, _ := ParseClockTime("17:00")

	proposals := collect(gen.Generate(employees, windows, nil, day("2026-01-05"), 6, start, end))
	if len(proposals) != 6 {
		t.Fatalf("期望 6 条建议，实际 %d 条", len(proposals))
	}

	counts := make(map[int64]int)
	for _, p := range proposals {
		counts[p.EmployeeID]++
	}
	for _, emp := range employees {
		if counts[emp.ID] != 2 {
			t.Errorf("员工 %d 分到了 %d 个班次，期望 2 个", emp.ID, counts[emp.ID])
		}
	}
}

// 被约束引擎拒绝的候选只是跳过，不是错误
func TestGenerateSkipsRejectedCandidates(t *testing.T) {
	engine := NewEngine(time.UTC)
	gen := NewGenerator(engine, time.UTC)

	employees := suggestEmployees(2)
	windows := allWeekWindows(employees)
	// 员工 2 整周都没有时间窗，严格策略下永远不会被排班
	delete(windows, 2)

	start, _ := ParseClockTime("09:00")
	end, _ := ParseClockTime("17:00")

	proposals := collect(gen.Generate(employees, windows, nil, day("2026-01-05"), 5, start, end))

	if len(proposals) != 5 {
		t.Fatalf("期望 5 条建议，实际 %d 条", len(proposals))
	}
	for _, p := range proposals {
		if p.EmployeeID != 1 {
			t.Errorf("员工 2 没有可用时间窗，不应当出现在建议中")
		}
	}

	// 每周上限 40 小时，员工 1 一周最多排 5 天，第 6、7 天没有任何可用的员工
	proposals = collect(gen.Generate(employees, windows, nil, day("2026-01-05"), 7, start, end))
	if len(proposals) != 5 {
		t.Errorf("超过每周上限后应当停止排班，期望 5 条建议，实际 %d 条", len(proposals))
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	engine := NewEngine(time.UTC)
	gen := NewGenerator(engine, time.UTC)
	start, _ := ParseClockTime("09:00")
	end, _ := ParseClockTime("17:00")

	if got := collect(gen.Generate(nil, nil, nil, day("2026-01-05"), 7, start, end)); len(got) != 0 {
		t.Errorf("没有员工时应当返回空序列，实际 %d 条", len(got))
	}
	if got := collect(gen.Generate(suggestEmployees(2), allWeekWindows(suggestEmployees(2)), nil, day("2026-01-05"), 0, start, end)); len(got) != 0 {
		t.Errorf("天数为 0 时应当返回空序列，实际 %d 条", len(got))
	}
}

// 序列是惰性的：调用方提前停止时不再继续生成
func TestGenerateLazyStop(t *testing.T) {
	engine := NewEngine(time.UTC)
	gen := NewGenerator(engine, time.UTC)

	employees := suggestEmployees(3)
	windows := allWeekWindows(employees)
	start, _ := ParseClockTime("09:00")
	end, _ := ParseClockTime("17:00")

	taken := 0
	gen.Generate(employees, windows, nil, day("2026-01-05"), 7, start, end)(func(p *Proposal) bool {
		taken++
		return taken < 3
	})

	if taken != 3 {
		t.Errorf("提前停止后只应当收到 3 条建议，实际 %d 条", taken)
	}
}
