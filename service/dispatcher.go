package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
	"github.com/rehiy/goform-simulator/state"
)

// 异步命令完成前的延迟
const (
	sendSmsDelay    = 1500 * time.Millisecond
	deleteSmsDelay  = 500 * time.Millisecond
	phonebookDelay  = 1000 * time.Millisecond
	connectDelay    = 2000 * time.Millisecond
	disconnectDelay = 1000 * time.Millisecond
	ussdDelay       = 2000 * time.Millisecond
)

// Form 设置请求的字段，只取每个字段的第一个值
type Form map[string]string

// Get 读取字段
func (f Form) Get(key string) string {
	return f[key]
}

// GetRequest 查询请求
type GetRequest struct {
	Cmds    []string
	IsMulti bool
	Page    int    // 从 0 开始
	PerPage int    // 0 表示不分页
	Tags    string // 逗号分隔的短信 tag，空或 "10" 表示全部
}

// GetResult 查询结果，Text 非空时以纯文本返回
type GetResult struct {
	Fields map[string]any
	Text   string
}

// Dispatcher 将 goform 请求转换为状态读写。
// 所有方法必须在调度器的逻辑线程上调用。
type Dispatcher struct {
	store *state.Store
	clock state.Clock
	log   *zap.SugaredLogger

	handlers map[string]func(Form) (string, error)
}

// NewDispatcher 创建命令分发器
func NewDispatcher(store *state.Store, clock state.Clock, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	d := &Dispatcher{store: store, clock: clock, log: log}
	d.handlers = map[string]func(Form) (string, error){
		modem.GoformLogin:        d.login,
		modem.GoformLogout:       d.logout,
		modem.GoformSetLanguage:  d.setLanguage,
		modem.GoformSetWifiSSID1: d.setWifi,
		modem.GoformSetMsgRead:   d.setMsgRead,
		modem.GoformSendSMS:      d.sendSms,
		modem.GoformDeleteSMS:    d.deleteSms,
		modem.GoformContactAdd:   d.addContact,
		modem.GoformContactDel:   d.deleteContacts,
		modem.GoformConnect:      d.connect,
		modem.GoformDisconnect:   d.disconnect,
		modem.GoformUSSD:         d.ussd,
	}
	return d
}

// Get 处理 goform_get_cmd_process
func (d *Dispatcher) Get(req GetRequest) (GetResult, error) {
	if len(req.Cmds) == 0 {
		return GetResult{}, ErrMissingCmd
	}

	if len(req.Cmds) == 1 && req.Cmds[0] == modem.CmdVersionInfo && !req.IsMulti {
		text, err := d.VersionText()
		return GetResult{Text: text}, err
	}

	fields := d.store.GetMany(req.Cmds)
	if slices.Contains(req.Cmds, modem.CmdSmsDataTotal) || slices.Contains(req.Cmds, modem.CmdSmsPageData) {
		fields[modem.FieldMessages] = d.pageMessages(req)
	}
	if slices.Contains(req.Cmds, modem.CmdPbmDataTotal) || slices.Contains(req.Cmds, modem.CmdPbmDataInfo) {
		fields[modem.FieldPhonebook] = d.store.Phonebook()
	}
	return GetResult{Fields: fields}, nil
}

// VersionText 两行的版本信息文本
func (d *Dispatcher) VersionText() (string, error) {
	v, ok := d.store.Version()
	if !ok || v.SoftwareVersion == "" || v.InnerSoftwareVersion == "" {
		return "", ErrVersionNotFound
	}
	return "software_version=" + v.SoftwareVersion + "\ninner_software_version=" + v.InnerSoftwareVersion, nil
}

func (d *Dispatcher) pageMessages(req GetRequest) []models.SmsMessage {
	var tags []modem.SmsTag
	if req.Tags != "" && req.Tags != modem.TagsAll {
		for _, s := range strings.Split(req.Tags, ",") {
			if t, err := modem.ParseSmsTag(strings.TrimSpace(s)); err == nil {
				tags = append(tags, t)
			}
		}
	}

	list := make([]models.SmsMessage, 0)
	for _, m := range d.store.Messages() {
		if len(tags) == 0 || slices.Contains(tags, m.Tag) {
			list = append(list, m)
		}
	}

	if req.PerPage <= 0 {
		return list
	}
	start := max(req.Page, 0) * req.PerPage
	if start >= len(list) {
		return []models.SmsMessage{}
	}
	return list[start:min(start+req.PerPage, len(list))]
}

// Set 处理 goform_set_cmd_process，返回 result 字段
func (d *Dispatcher) Set(form Form) (string, error) {
	id := form.Get("goformId")
	if id == "" {
		return "", ErrMissingGoformID
	}

	h, ok := d.handlers[id]
	if !ok {
		d.log.Warnf("[goform] unhandled goformId: %s", id)
		return modem.ResultFailure, &UnhandledError{GoformID: id}
	}

	result, err := h(form)
	if err != nil {
		d.log.Warnf("[goform] %s rejected: %v", id, err)
	}
	return result, err
}

// later 延迟执行 fn，出错或 panic 时调用 fail 设置错误状态
func (d *Dispatcher) later(delay time.Duration, name string, fn func() error, fail func()) {
	d.clock.After(delay, name, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err != nil && fail != nil {
				fail()
			}
		}()
		return fn()
	})
}

func require(form Form, id string, fields ...string) error {
	for _, f := range fields {
		if form.Get(f) == "" {
			return &ValidationError{GoformID: id, Field: f}
		}
	}
	return nil
}

// 立即完成的命令

func (d *Dispatcher) login(form Form) (string, error) {
	if form.Get("password") != d.store.String("admin_Password") {
		d.store.Publish(models.EventLogin, modem.LoginBadPassword)
		return modem.LoginBadPassword, nil
	}
	d.store.Set("loginfo", modem.LoginInfoOK)
	d.store.Publish(models.EventLogin, modem.LoginOK)
	return modem.LoginOK, nil
}

func (d *Dispatcher) logout(Form) (string, error) {
	d.store.Set("loginfo", modem.LoginInfoNone)
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) setLanguage(form Form) (string, error) {
	if err := require(form, modem.GoformSetLanguage, "Language"); err != nil {
		return modem.ResultFailure, err
	}
	d.store.Set("language", form.Get("Language"))
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) setWifi(form Form) (string, error) {
	if err := require(form, modem.GoformSetWifiSSID1, "ssid"); err != nil {
		return modem.ResultFailure, err
	}

	d.store.Set("SSID1", form.Get("ssid"))
	for field, key := range map[string]string{
		"security_mode":  "AuthMode",
		"passphrase":     "WPAPSK1",
		"MAX_Access_num": "MAX_Access_num",
	} {
		if v, ok := form[field]; ok {
			d.store.Set(key, v)
		}
	}
	if v, ok := form["broadcastSsidEnabled"]; ok {
		hide := "0"
		if v == "true" || v == "1" {
			hide = "1"
		}
		d.store.Set("HideSSID", hide)
	}
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) setMsgRead(form Form) (string, error) {
	if err := require(form, modem.GoformSetMsgRead, "msg_id"); err != nil {
		return modem.ResultFailure, err
	}
	d.store.MarkSmsRead(parseIDs(form.Get("msg_id"), ";"))
	return modem.ResultSuccess, nil
}

// 先应答后完成的命令

func (d *Dispatcher) sendSms(form Form) (string, error) {
	if err := require(form, modem.GoformSendSMS, "Number", "MessageBody"); err != nil {
		return modem.ResultFailure, err
	}

	bodyEnc := textEncoding(form.Get("encode_type"), form.Get("MessageBody"))
	inputs := make([]state.SmsInput, 0, 1)
	for _, number := range strings.Split(form.Get("Number"), ";") {
		if number = strings.TrimSpace(number); number == "" {
			continue
		}
		inputs = append(inputs, state.SmsInput{
			Number:       number,
			Body:         form.Get("MessageBody"),
			BodyEncoding: bodyEnc,
			Time:         form.Get("sms_time"),
			Tag:          modem.TagSent,
			DraftGroupID: form.Get("draft_group_id"),
		})
	}
	if len(inputs) == 0 {
		return modem.ResultFailure, &ValidationError{GoformID: modem.GoformSendSMS, Field: "Number", Reason: "no recipient"}
	}

	d.store.SetSmsCmdStatus(models.SmsCmdStatus{Cmd: modem.SmsCmdSend, Result: modem.CmdProcessing})
	d.later(sendSmsDelay, "send-sms", func() error {
		// 整批放不下时一条都不写入
		if room := d.store.SmsHeadroom(); room < len(inputs) {
			return fmt.Errorf("send sms to %d recipients with room for %d: %w", len(inputs), room, state.ErrSmsStorageFull)
		}
		for _, in := range inputs {
			msg, err := d.store.AddSms(in)
			if err != nil {
				return fmt.Errorf("send sms to %s: %w", in.Number, err)
			}
			d.log.Infof("[goform] sms %d sent to %s", msg.ID, in.Number)
		}
		d.store.SetSmsCmdStatus(models.SmsCmdStatus{Cmd: modem.SmsCmdSend, Result: modem.CmdSucceeded})
		return nil
	}, func() {
		d.store.SetSmsCmdStatus(models.SmsCmdStatus{Cmd: modem.SmsCmdSend, Result: modem.CmdFailed})
	})
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) deleteSms(form Form) (string, error) {
	if err := require(form, modem.GoformDeleteSMS, "msg_id"); err != nil {
		return modem.ResultFailure, err
	}

	ids := parseIDs(form.Get("msg_id"), ";")
	d.store.SetSmsCmdStatus(models.SmsCmdStatus{Cmd: modem.SmsCmdDelete, Result: modem.CmdProcessing})
	d.later(deleteSmsDelay, "delete-sms", func() error {
		if !d.store.DeleteSms(ids) {
			d.log.Infof("[goform] delete sms %v: nothing removed", ids)
		}
		d.store.SetSmsCmdStatus(models.SmsCmdStatus{Cmd: modem.SmsCmdDelete, Result: modem.CmdSucceeded})
		return nil
	}, func() {
		d.store.SetSmsCmdStatus(models.SmsCmdStatus{Cmd: modem.SmsCmdDelete, Result: modem.CmdFailed})
	})
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) addContact(form Form) (string, error) {
	if err := require(form, modem.GoformContactAdd, "location", "name", "mobilephone_num"); err != nil {
		return modem.ResultFailure, err
	}
	loc, err := modem.ParseLocation(form.Get("location"))
	if err != nil {
		return modem.ResultFailure, &ValidationError{GoformID: modem.GoformContactAdd, Field: "location", Reason: err.Error()}
	}

	in := state.PhonebookInput{
		Location:     loc,
		Name:         form.Get("name"),
		Number:       form.Get("mobilephone_num"),
		HomeNumber:   form.Get("homephone_num"),
		OfficeNumber: form.Get("officephone_num"),
		Group:        form.Get("groupchoose"),
		Email:        form.Get("email"),
		Encoding:     textEncoding(form.Get("encode_type"), form.Get("name")),
	}

	d.store.SetPbmWriteFlag(modem.WriteBusy)
	d.later(phonebookDelay, "pbm-add", func() error {
		entry, err := d.store.AddPhonebookEntry(in)
		if err != nil {
			return fmt.Errorf("add contact %s: %w", in.Number, err)
		}
		d.log.Infof("[goform] contact %d added", entry.ID)
		d.store.SetPbmWriteFlag(modem.WriteIdle)
		return nil
	}, func() {
		d.store.SetPbmWriteFlag(modem.WriteFailed)
	})
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) deleteContacts(form Form) (string, error) {
	if err := require(form, modem.GoformContactDel, "delete_id"); err != nil {
		return modem.ResultFailure, err
	}

	ids := parseIDs(form.Get("delete_id"), ",")
	d.store.SetPbmWriteFlag(modem.WriteBusy)
	d.later(phonebookDelay, "pbm-delete", func() error {
		d.store.DeletePhonebookEntries(ids)
		d.store.SetPbmWriteFlag(modem.WriteIdle)
		return nil
	}, func() {
		d.store.SetPbmWriteFlag(modem.WriteFailed)
	})
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) connect(Form) (string, error) {
	d.store.PPPDial()
	d.later(connectDelay, "ppp-connect", func() error {
		d.store.PPPEstablish()
		return nil
	}, nil)
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) disconnect(Form) (string, error) {
	d.store.PPPHangup()
	d.later(disconnectDelay, "ppp-disconnect", func() error {
		d.store.PPPRelease()
		return nil
	}, nil)
	return modem.ResultSuccess, nil
}

func (d *Dispatcher) ussd(form Form) (string, error) {
	if err := require(form, modem.GoformUSSD, "USSD_operator"); err != nil {
		return modem.ResultFailure, err
	}

	switch op := form.Get("USSD_operator"); op {
	case modem.USSDSend, modem.USSDReply:
		command := form.Get("USSD_send_number")
		if command == "" {
			command = form.Get("USSD_reply_number")
		}
		if command == "" {
			d.store.SetUssdFlag(modem.USSDFailed)
			return modem.ResultFailure, &ValidationError{GoformID: modem.GoformUSSD, Field: "USSD_send_number"}
		}

		d.store.SetUssdFlag(modem.USSDProcessing)
		d.later(ussdDelay, "ussd", func() error {
			d.store.SetUssd(modem.USSDReady, ussdReply(command))
			return nil
		}, func() {
			d.store.SetUssdFlag(modem.USSDFailed)
		})

	case modem.USSDCancel:
		d.store.SetUssd(modem.USSDCancelled, models.UssdData{Action: modem.USSDActionEnded})

	default:
		d.store.SetUssdFlag(modem.USSDFailed)
		return modem.ResultFailure, &ValidationError{GoformID: modem.GoformUSSD, Field: "USSD_operator", Reason: "unknown operator " + strconv.Quote(op)}
	}
	return modem.ResultSuccess, nil
}

// ussdReply 模拟网络侧的 USSD 应答
func ussdReply(command string) models.UssdData {
	text := "Mock USSD Response to: " + command + ". "
	action := modem.USSDActionNotify
	if command == modem.BalanceDialCode {
		text += "Your balance is $10.50. Reply 1 for more options."
		action = modem.USSDActionMenu
	} else {
		text += "Operation successful."
	}
	return models.UssdData{Data: modem.EncodeUCS2(text), Action: action}
}
