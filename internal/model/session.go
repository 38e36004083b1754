package model

type Session struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
