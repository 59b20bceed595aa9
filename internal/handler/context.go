package handler

type ContextKey string

var (
	AuthCtxKey      ContextKey = "auth"
	EmployeeInfoCtx ContextKey = "employeeInfo"
	ShiftCtx        ContextKey = "shift"
	SwapRequestCtx  ContextKey = "swapRequest"
)
