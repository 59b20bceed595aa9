package scheduler

import "fmt"

// Rule 标识候选班次被拒绝时违反的规则
type Rule string

const (
	RuleInvalidInput              Rule = "invalid_input"
	RuleOverlapConflict           Rule = "overlap_conflict"
	RuleNoAvailabilityWindow      Rule = "no_availability_window"
	RuleOutsideAvailabilityWindow Rule = "outside_availability_window"
	RuleDailyCapExceeded          Rule = "daily_cap_exceeded"
	RuleInsufficientRest          Rule = "insufficient_rest"
	RuleWeeklyCapExceeded         Rule = "weekly_cap_exceeded"
)

// Violation 表示一次可恢复的业务规则拒绝。这不是致命错误：
// 调用方根据 Rule 和 Limit/Actual 渲染给用户看的提示，建议生成器则直接跳过该候选。
// Limit 和 Actual 以小时为单位，保留未舍入的值，展示时才做两位小数的舍入。
type Violation struct {
	Rule    Rule    `json:"rule"`
	Message string  `json:"message"`
	Limit   float64 `json:"limit,omitempty"`
	Actual  float64 `json:"actual,omitempty"`
}

func (v *Violation) Error() string {
	return v.Message
}

func invalidInput(format string, args ...any) *Violation {
	return &Violation{
		Rule:    RuleInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}
