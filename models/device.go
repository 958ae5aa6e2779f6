package models

import (
	"github.com/rehiy/goform-simulator/modem"
)

// SmsMessage 设备中的一条短信
type SmsMessage struct {
	ID           int          `json:"id,string"`
	Number       string       `json:"number"`
	Content      string       `json:"content"`
	Date         string       `json:"date"`
	Tag          modem.SmsTag `json:"tag"`
	DraftGroupID string       `json:"draft_group_id"`
}

// PhonebookEntry 电话本中的一个联系人
type PhonebookEntry struct {
	ID       int            `json:"pbm_id,string"`
	Location modem.Location `json:"pbm_location"`
	Name     string         `json:"pbm_name"`
	Number   string         `json:"pbm_number"`
	Anr      string         `json:"pbm_anr"`
	Anr1     string         `json:"pbm_anr1"`
	Group    string         `json:"pbm_group"`
	Email    string         `json:"pbm_email"`
}

// SmsCapacity 短信存储容量
type SmsCapacity struct {
	NvTotal          int `json:"sms_nv_total,string"`
	NvRevTotal       int `json:"sms_nv_rev_total,string"`
	NvSendTotal      int `json:"sms_nv_send_total,string"`
	NvDraftboxTotal  int `json:"sms_nv_draftbox_total,string"`
	SimTotal         int `json:"sms_sim_total,string"`
	SimRevTotal      int `json:"sms_sim_rev_total,string"`
	SimSendTotal     int `json:"sms_sim_send_total,string"`
	SimDraftboxTotal int `json:"sms_sim_draftbox_total,string"`
}

// PhonebookCapacity 电话本容量
type PhonebookCapacity struct {
	DevMaxRecordNum  int    `json:"pbm_dev_max_record_num,string"`
	DevUsedRecordNum int    `json:"pbm_dev_used_record_num,string"`
	SimMaxRecordNum  int    `json:"pbm_sim_max_record_num,string"`
	SimUsedRecordNum int    `json:"pbm_sim_used_record_num,string"`
	SimType          string `json:"pbm_sim_type"`
	SimMaxNameLen    int    `json:"pbm_sim_max_name_len,string"`
	SimMaxNumberLen  int    `json:"pbm_sim_max_number_len,string"`
}

// SmsParameters 短信参数
type SmsParameters struct {
	SCA            string `json:"sms_para_sca"`
	MemStore       string `json:"sms_para_mem_store"`
	StatusReport   string `json:"sms_para_status_report"`
	ValidityPeriod string `json:"sms_para_validity_period"`
}

// SmsCmdStatus 最近一次短信命令的执行状态
type SmsCmdStatus struct {
	Cmd    modem.SmsCmd    `json:"sms_cmd"`
	Result modem.CmdResult `json:"sms_cmd_status_result"`
}

// UssdData USSD 会话的响应数据
type UssdData struct {
	Data   string           `json:"ussd_data"`
	Action modem.USSDAction `json:"ussd_action"`
}

// VersionInfo 固件版本
type VersionInfo struct {
	SoftwareVersion      string `json:"software_version"`
	InnerSoftwareVersion string `json:"inner_software_version"`
}

// Station 已连接的 Wi-Fi 终端
type Station struct {
	MacAddr  string `json:"mac_addr"`
	Hostname string `json:"hostname"`
}
