package modem

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// goform 命令
const (
	GoformLogin          = "LOGIN"
	GoformLogout         = "LOGOUT"
	GoformSetLanguage    = "SET_WEB_LANGUAGE"
	GoformSetWifiSSID1   = "SET_WIFI_SSID1_SETTINGS"
	GoformSetMsgRead     = "SET_MSG_READ"
	GoformSendSMS        = "SEND_SMS"
	GoformDeleteSMS      = "DELETE_SMS"
	GoformContactAdd     = "PBM_CONTACT_ADD"
	GoformContactDel     = "PBM_CONTACT_DEL"
	GoformConnect        = "CONNECT_NETWORK"
	GoformDisconnect     = "DISCONNECT_NETWORK"
	GoformUSSD           = "USSD_PROCESS"
	USSDSend             = "ussd_send"
	USSDReply            = "ussd_reply"
	USSDCancel           = "ussd_cancel"
	ResultSuccess        = "success"
	ResultFailure        = "failure"
	LoginOK              = "0"
	LoginBadPassword     = "3"
	LoginInfoOK          = "ok"
	LoginInfoNone        = "no"
	StatusReportEnabled  = "1"
	CmdVersionInfo       = "version_info"
	CmdSmsDataTotal      = "sms_data_total"
	CmdSmsPageData       = "sms_page_data"
	CmdPbmDataTotal      = "pbm_data_total"
	CmdPbmDataInfo       = "pbm_data_info"
	FieldMessages        = "messages"
	FieldPhonebook       = "pbm_data"
	TagsAll              = "10"
	BalanceDialCode      = "*123#"
	DeliveryReportFormat = "Delivery Report: Message to %s successfully delivered."
)

// SmsCmd sms_cmd_status_info 中的命令编号
type SmsCmd int

const (
	SmsCmdNone   SmsCmd = 0
	SmsCmdSend   SmsCmd = 4
	SmsCmdDelete SmsCmd = 6
)

// CmdResult 异步命令的执行结果
type CmdResult int

const (
	CmdIdle       CmdResult = 0
	CmdProcessing CmdResult = 1
	CmdSucceeded  CmdResult = 3
	CmdFailed     CmdResult = 4
)

func (r CmdResult) String() string {
	return strconv.Itoa(int(r))
}

func (r CmdResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *CmdResult) UnmarshalJSON(b []byte) error {
	n, err := unmarshalCode(b)
	*r = CmdResult(n)
	return err
}

// SmsTag 短信状态
type SmsTag int

const (
	TagRead           SmsTag = 0
	TagUnread         SmsTag = 1
	TagSent           SmsTag = 2
	TagDeliveryReport SmsTag = 5
)

// ParseSmsTag 解析线上的 tag 字符串，未知数值原样保留
func ParseSmsTag(s string) (SmsTag, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid sms tag %q", s)
	}
	return SmsTag(n), nil
}

func (t SmsTag) String() string {
	return strconv.Itoa(int(t))
}

// Received 已读和未读都占用收件箱容量
func (t SmsTag) Received() bool {
	return t == TagRead || t == TagUnread
}

func (t SmsTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SmsTag) UnmarshalJSON(b []byte) error {
	n, err := unmarshalCode(b)
	*t = SmsTag(n)
	return err
}

// Location 电话本存储位置
type Location int

const (
	LocationSIM    Location = 0
	LocationDevice Location = 1
)

// ParseLocation 解析 location 字段，只接受 "0" 和 "1"
func ParseLocation(s string) (Location, error) {
	switch s {
	case "0":
		return LocationSIM, nil
	case "1":
		return LocationDevice, nil
	}
	return 0, fmt.Errorf("invalid phonebook location %q", s)
}

func (l Location) String() string {
	return strconv.Itoa(int(l))
}

func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Location) UnmarshalJSON(b []byte) error {
	n, err := unmarshalCode(b)
	*l = Location(n)
	return err
}

// PPPStatus 拨号连接状态
type PPPStatus string

const (
	PPPDisconnected  PPPStatus = "ppp_disconnected"
	PPPConnecting    PPPStatus = "ppp_connecting"
	PPPConnected     PPPStatus = "ppp_connected"
	PPPDisconnecting PPPStatus = "ppp_disconnecting"
)

// Valid 是否为已知状态
func (p PPPStatus) Valid() bool {
	switch p {
	case PPPDisconnected, PPPConnecting, PPPConnected, PPPDisconnecting:
		return true
	}
	return false
}

// WriteFlag pbm_write_flag 的取值
type WriteFlag string

const (
	WriteIdle   WriteFlag = "0"
	WriteBusy   WriteFlag = "1"
	WriteFailed WriteFlag = "2"
)

// USSDFlag ussd_write_flag 的取值
type USSDFlag string

const (
	USSDIdle       USSDFlag = "0"
	USSDFailed     USSDFlag = "4"
	USSDCancelled  USSDFlag = "13"
	USSDProcessing USSDFlag = "15"
	USSDReady      USSDFlag = "16"
)

// USSDAction ussd_data_info.ussd_action 的取值
type USSDAction string

const (
	USSDActionMenu   USSDAction = "0"
	USSDActionNotify USSDAction = "1"
	USSDActionEnded  USSDAction = "2"
)

// unmarshalCode 同时接受 "1" 和 1 两种写法
func unmarshalCode(b []byte) (int, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return strconv.Atoi(s)
	}
	var n int
	err := json.Unmarshal(b, &n)
	return n, err
}
