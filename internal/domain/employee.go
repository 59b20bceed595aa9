package domain

import (
	"time"
)

type Role string

const (
	RoleStaff        Role = "普通店员"
	RoleStoreManager Role = "店长"
	RoleAdmin        Role = "系统管理员"
)

type Employee struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"fullName"`
	StoreID       int64     `json:"storeID"`
	Role          Role      `json:"role"`
	HourlyRate    float64   `json:"hourlyRate"`
	WeeklyHourCap float64   `json:"weeklyHourCap"` // 每周排班工时上限，默认 40 小时
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
