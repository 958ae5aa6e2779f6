package models

import "time"

// 归档短信的方向
const (
	DirectionIn     = "in"
	DirectionOut    = "out"
	DirectionReport = "report"
)

// SMS 归档的短信记录
type SMS struct {
	ID         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	SmsID      int       `json:"sms_id" gorm:"index"`
	Direction  string    `json:"direction" gorm:"index"`
	Number     string    `json:"number" gorm:"index"`
	Content    string    `json:"content"`
	Tag        string    `json:"tag"`
	DeviceTime string    `json:"device_time"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// SMSFilter 归档查询条件
type SMSFilter struct {
	Direction string
	Number    string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// Webhook 收到短信时回调的地址
type Webhook struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Template  string    `json:"template"`
	Enabled   bool      `json:"enabled" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting 运行时开关
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey"`
	Value string `json:"value"`
}
