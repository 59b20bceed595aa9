package domain

// AuthContext 是边界层从令牌中还原出来的调用者身份。
// 令牌由外部的身份服务签发，这里只负责解析和传递，
// 约束引擎等核心逻辑不直接接触它。
type AuthContext struct {
	EmployeeID int64
	Role       Role
	StoreID    int64
}

// CanManage 表示调用者是否有权管理某个门店的排班
func (a *AuthContext) CanManage(storeID int64) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleStoreManager && a.StoreID == storeID
}
