package scheduler

import (
	"iter"
	"sort"
	"time"

	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

// Proposal 是建议生成器给出的一条候选排班，格式与创建班次的入参一致。
// 生成器从不直接写入，调用方自行决定提交全部、部分还是放弃。
type Proposal struct {
	EmployeeID int64  `json:"employeeID"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// Generator 按天生成建议排班。每一天把候选员工按最近 7 天内的排班工时
// 从少到多排序（工时相同的用天数轮转偏移打破平局，避免总是偏向同一个人），
// 然后把固定的 [shiftStart, shiftEnd) 时间窗分配给第一个能通过约束引擎
// 校验的员工。校验使用包含本批次已生成建议的模拟快照，
// 因此建议排班和手工创建遵守完全相同的规则。
type Generator struct {
	engine *Engine
	loc    *time.Location
}

func NewGenerator(engine *Engine, loc *time.Location) *Generator {
	return &Generator{
		engine: engine,
		loc:    loc,
	}
}

// Generate 返回一个惰性的、只能遍历一次的建议序列。
// employees 是参与排班的员工，windows 按员工 ID 给出各自的可用时间窗，
// existing 是这些员工在相关时间范围内已有的真实班次。
// 某个员工在某一天被约束引擎拒绝时只是跳过，不是错误，部分结果是常态。
func (g *Generator) Generate(
	employees []*domain.Employee,
	windows map[int64][]*domain.AvailabilityWindow,
	existing []*domain.Shift,
	startDate time.Time,
	days int,
	shiftStart, shiftEnd ClockTime,
) iter.Seq[*Proposal] {
	return func(yield func(*Proposal) bool) {
		if len(employees) == 0 || days <= 0 {
			return
		}

		// 模拟快照：真实班次加上本批次中已经生成的建议
		simulated := make(map[int64][]*domain.Shift)
		for _, sh := range existing {
			simulated[sh.EmployeeID] = append(simulated[sh.EmployeeID], sh)
		}
		nextID := int64(-1) // 模拟班次使用负数 ID，避免和真实班次混淆

		for day := 0; day < days; day++ {
			date := startDate.AddDate(0, 0, day)
			dateStr := date.Format("2006-01-02")

			for _, emp := range g.rank(employees, simulated, date, day) {
				op := NewCreateOperation(emp.ID, dateStr, shiftStart.String(), shiftEnd.String())
				snap := &Snapshot{
					Employee: emp,
					Shifts:   simulated[emp.ID],
					Windows:  windows[emp.ID],
				}

				if err := g.engine.Evaluate(op, snap); err != nil {
					continue
				}

				if !yield(&Proposal{
					EmployeeID: emp.ID,
					Date:       dateStr,
					StartTime:  shiftStart.String(),
					EndTime:    shiftEnd.String(),
				}) {
					return
				}

				simulated[emp.ID] = append(simulated[emp.ID], &domain.Shift{
					ID:         nextID,
					EmployeeID: emp.ID,
					Date:       dateStr,
					StartTime:  shiftStart.String(),
					EndTime:    shiftEnd.String(),
				})
				nextID--
				break // 每天只分配一个班次
			}
		}
	}
}

// rank 按 [date-7天, date) 内的排班工时从少到多给员工排序。
// 排序前先按天数轮转员工顺序，配合稳定排序，工时相同的员工不会总是同一个排在前面。
func (g *Generator) rank(employees []*domain.Employee, simulated map[int64][]*domain.Shift, date time.Time, day int) []*domain.Employee {
	offset := day % len(employees)
	rotated := make([]*domain.Employee, 0, len(employees))
	rotated = append(rotated, employees[offset:]...)
	rotated = append(rotated, employees[:offset]...)

	from := date.AddDate(0, 0, -7)
	minutes := make(map[int64]int, len(rotated))
	for _, emp := range rotated {
		minutes[emp.ID] = g.trailingMinutes(simulated[emp.ID], from, date)
	}

	sort.SliceStable(rotated, func(i, j int) bool {
		return minutes[rotated[i].ID] < minutes[rotated[j].ID]
	})

	return rotated
}

func (g *Generator) trailingMinutes(shifts []*domain.Shift, from, to time.Time) int {
	total := 0
	for _, sh := range shifts {
		date, err := ParseDate(sh.Date, g.loc)
		if err != nil {
			continue
		}
		if date.Before(from) || !date.Before(to) {
			continue
		}

		m, err := shiftMinutes(sh)
		if err != nil {
			continue
		}
		total += m
	}
	return total
}
