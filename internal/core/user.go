package core

type Role string

const (
	RoleAdmin Role = "admin" // 管理員：可審核商品、代為處理交換
	RoleUser  Role = "user"  // 一般使用者
)

// 註冊贈送點數
const WelcomePoints int64 = 50

type PointsOperation string

const (
	PointsAdd      PointsOperation = "add"
	PointsSubtract PointsOperation = "subtract"
)
