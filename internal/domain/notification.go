package domain

// NotificationMessage 是投递到消息队列中的通知消息，
// 由外部的通知服务消费并负责实际的送达。
type NotificationMessage struct {
	ID   string `json:"id"` // uuid，供消费方做幂等处理
	Type string `json:"type"`
	Data any    `json:"data"`
}

type ShiftChangedData struct {
	ShiftID    int64  `json:"shiftID"`
	EmployeeID int64  `json:"employeeID"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

type SwapResolvedData struct {
	SwapRequestID int64  `json:"swapRequestID"`
	ShiftID       int64  `json:"shiftID"`
	RequesterID   int64  `json:"requesterID"`
	TargetID      int64  `json:"targetID"`
	Status        string `json:"status"`
}
