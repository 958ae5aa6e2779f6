package models

import "time"

// 模拟器事件类型
const (
	EventSmsReceived    = "sms_received"
	EventSmsSent        = "sms_sent"
	EventSmsReport      = "sms_report"
	EventSmsDeleted     = "sms_deleted"
	EventSmsRead        = "sms_read"
	EventContactAdded   = "pbm_added"
	EventContactDeleted = "pbm_deleted"
	EventPPPStatus      = "ppp_status"
	EventUssdResponse   = "ussd_response"
	EventLogin          = "login"
)

// Event 设备状态变化通知
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}
