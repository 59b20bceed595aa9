package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomEmployee 生成一个随机的普通店员，时薪在 20 到 35 之间
func GenerateRandomEmployee(storeID int64, weeklyHourCap float64) *domain.Employee {
	fullName := GenerateRandomChineseName()

	return &domain.Employee{
		Username:      GenerateUsernameFromChineseName(fullName),
		FullName:      fullName,
		StoreID:       storeID,
		Role:          domain.RoleStaff,
		HourlyRate:    float64(rand.Intn(16)+20) + float64(rand.Intn(2))*0.5,
		WeeklyHourCap: weeklyHourCap,
	}
}

// GenerateRandomWindow 为某个星期几生成一个随机的可用时间窗，
// 开始时刻在 08:00 到 12:00 之间的整点，窗口宽 8 到 12 小时
func GenerateRandomWindow(employeeID int64, weekday int32) *domain.AvailabilityWindow {
	startHour := rand.Intn(5) + 8
	endHour := startHour + rand.Intn(5) + 8
	if endHour > 23 {
		endHour = 23
	}

	window := &domain.AvailabilityWindow{
		EmployeeID: employeeID,
		Weekday:    weekday,
		StartTime:  fmt.Sprintf("%02d:00", startHour),
		EndTime:    fmt.Sprintf("%02d:00", endHour),
	}

	// 一部分时间窗带上单日上限和最小休息要求
	if rand.Intn(2) == 0 {
		maxDay := float64(rand.Intn(3) + 6)
		window.MaxDayHours = &maxDay
	}
	if rand.Intn(2) == 0 {
		minRest := float64(rand.Intn(4) + 9)
		window.MinRestHours = &minRest
	}

	return window
}

// GenerateRandomTimeEntry 生成某一天的随机打卡记录，上班在 08:00 到 12:00 之间，
// 工作 4 到 9 小时。少数记录不带下班打卡，模拟忘记打卡的情况
func GenerateRandomTimeEntry(employeeID int64, date time.Time) *domain.TimeEntry {
	clockIn := time.Date(date.Year(), date.Month(), date.Day(), rand.Intn(5)+8, rand.Intn(60), 0, 0, date.Location())

	entry := &domain.TimeEntry{
		EmployeeID: employeeID,
		ClockIn:    clockIn,
	}

	if rand.Intn(10) > 0 {
		clockOut := clockIn.Add(time.Duration(rand.Intn(6)+4) * time.Hour)
		entry.ClockOut = &clockOut
	}

	return entry
}

// GenerateRandomShift 在可用时间窗内生成一个 4 到 8 小时的班次
func GenerateRandomShift(employeeID int64, date time.Time, window *domain.AvailabilityWindow) *domain.Shift {
	var startHour, endHour int
	fmt.Sscanf(window.StartTime, "%d:", &startHour)
	fmt.Sscanf(window.EndTime, "%d:", &endHour)

	length := rand.Intn(5) + 4
	if startHour+length > endHour {
		length = endHour - startHour
	}

	return &domain.Shift{
		EmployeeID: employeeID,
		Date:       date.Format("2006-01-02"),
		StartTime:  fmt.Sprintf("%02d:00", startHour),
		EndTime:    fmt.Sprintf("%02d:00", startHour+length),
	}
}
