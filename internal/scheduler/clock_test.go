package scheduler

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 9*60 + 30, false},
		{"23:59", 23*60 + 59, false},
		{"9:00", 0, true}, // 必须补零
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12.30", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClockTime(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q) 应当返回错误", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q) 返回错误: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClockTime(%q) = %d, 期望 %d", tt.input, got, tt.want)
		}
	}
}

func TestClockTimeString(t *testing.T) {
	ct, err := ParseClockTime("09:05")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if ct.String() != "09:05" {
		t.Errorf("String() = %q, 期望 09:05", ct.String())
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-01-05", "2026-01-05"}, // 周一是本周的起点
		{"2026-01-07", "2026-01-05"}, // 周三
		{"2026-01-11", "2026-01-05"}, // 周日仍然属于本 ISO 周
		{"2026-01-12", "2026-01-12"}, // 下周一
	}

	for _, tt := range tests {
		date, err := ParseDate(tt.date, time.UTC)
		if err != nil {
			t.Fatalf("解析日期失败: %v", err)
		}
		got := WeekStart(date).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("WeekStart(%s) = %s, 期望 %s", tt.date, got, tt.want)
		}
	}
}
