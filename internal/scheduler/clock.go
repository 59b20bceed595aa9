package scheduler

import (
	"fmt"
	"time"
)

// ClockTime 表示一天内的某个时刻，以从 00:00 起经过的分钟数存储。
// 类型化的比较可以直接使用 < 和 <=，避免对 "HH:MM" 字符串做比较。
type ClockTime int

// ParseClockTime 解析补零的 HH:MM 格式时刻。
// 输入必须严格补零（09:00 而不是 9:00），这是对外约定的输入格式不变式。
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("时刻 %q 不符合 HH:MM 格式", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("时刻 %q 不符合 HH:MM 格式", s)
		}
	}

	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("时刻 %q 超出合法范围", s)
	}

	return ClockTime(hour*60 + minute), nil
}

func (c ClockTime) Hour() int {
	return int(c) / 60
}

func (c ClockTime) Minute() int {
	return int(c) % 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On 把时刻和日期组合成运营时区内的绝对时间
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

// ParseDate 解析 2006-01-02 格式的日期，返回运营时区内当天的 00:00
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期 %q 不符合 2006-01-02 格式", s)
	}
	return date, nil
}

// WeekStart 返回日期所在 ISO 周的起点，即周一 00:00
func WeekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7 // 周一为 0，周日为 6
	monday := date.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, date.Location())
}
