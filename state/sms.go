package state

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

// SmsDateLayout 设备短信时间格式 yy,MM,dd,HH,mm,ss
const SmsDateLayout = "06,01,02,15,04,05"

// 状态报告延迟范围（毫秒）
const (
	reportDelayMin = 2000
	reportDelayMax = 7000
)

// SmsInput 新短信的内容
type SmsInput struct {
	Number         string
	NumberEncoding modem.Encoding
	Body           string
	BodyEncoding   modem.Encoding
	Time           string // 为空时使用当前时间，';' 分隔符会被替换为 ','
	Tag            modem.SmsTag
	DraftGroupID   string
}

// AddSms 追加一条短信并维护容量计数
func (s *Store) AddSms(in SmsInput) (models.SmsMessage, error) {
	msg, err := s.insertSms(in)
	if err != nil {
		return msg, err
	}

	s.notify(smsEventType(msg.Tag), msg)

	if msg.Tag == modem.TagSent && s.smsPara.StatusReport == modem.StatusReportEnabled {
		s.scheduleReport(msg, plainText(in.Number, in.NumberEncoding))
	}
	return msg, nil
}

// SmsHeadroom 收发计数距离 sms_nv_total 还剩的条数
func (s *Store) SmsHeadroom() int {
	return max(0, s.smsCap.NvTotal-s.smsCap.NvRevTotal-s.smsCap.NvSendTotal)
}

func (s *Store) insertSms(in SmsInput) (models.SmsMessage, error) {
	counted := in.Tag.Received() || in.Tag == modem.TagSent
	if counted && s.SmsHeadroom() == 0 {
		return models.SmsMessage{}, ErrSmsStorageFull
	}

	s.smsSeq++
	msg := models.SmsMessage{
		ID:           s.smsSeq,
		Number:       encodeNumber(in.Number, in.NumberEncoding),
		Content:      encodeText(in.Body, in.BodyEncoding),
		Date:         s.smsDate(in.Time),
		Tag:          in.Tag,
		DraftGroupID: in.DraftGroupID,
	}
	s.messages = append(s.messages, msg)

	switch {
	case msg.Tag.Received():
		s.smsCap.NvRevTotal++
	case msg.Tag == modem.TagSent:
		s.smsCap.NvSendTotal++
	}
	return msg, nil
}

// scheduleReport 延迟生成发送成功的状态报告
func (s *Store) scheduleReport(sent models.SmsMessage, number string) {
	delay := time.Duration(RandRange(s.rnd, reportDelayMin, reportDelayMax)) * time.Millisecond

	s.clock.After(delay, "sms-report", func() error {
		report, err := s.insertSms(SmsInput{
			Number:       sent.Number,
			Body:         fmt.Sprintf(modem.DeliveryReportFormat, number),
			Tag:          modem.TagDeliveryReport,
			DraftGroupID: strconv.Itoa(sent.ID),
		})
		if err != nil {
			return fmt.Errorf("delivery report for sms %d: %w", sent.ID, err)
		}
		s.stsReceived = true
		s.log.Infof("[sms] delivery report %d for %d", report.ID, sent.ID)
		s.notify(models.EventSmsReport, report)
		return nil
	})
}

// DeleteSms 删除指定短信，返回是否有短信被删除
func (s *Store) DeleteSms(ids []int) bool {
	var removed []int
	s.messages = slices.DeleteFunc(s.messages, func(m models.SmsMessage) bool {
		if !slices.Contains(ids, m.ID) {
			return false
		}
		switch {
		case m.Tag.Received():
			s.smsCap.NvRevTotal = max(0, s.smsCap.NvRevTotal-1)
		case m.Tag == modem.TagSent:
			s.smsCap.NvSendTotal = max(0, s.smsCap.NvSendTotal-1)
		}
		removed = append(removed, m.ID)
		return true
	})

	if len(removed) == 0 {
		return false
	}
	s.notify(models.EventSmsDeleted, removed)
	return true
}

// replaceMessages 整体替换短信列表，按新列表重算收发计数
func (s *Store) replaceMessages(list []models.SmsMessage) error {
	seen := make(map[int]bool, len(list))
	rev, send := 0, 0
	for _, m := range list {
		if seen[m.ID] {
			return fmt.Errorf("sms %d: %w", m.ID, ErrDuplicateID)
		}
		seen[m.ID] = true
		switch {
		case m.Tag.Received():
			rev++
		case m.Tag == modem.TagSent:
			send++
		}
	}

	s.messages = slices.Clone(list)
	s.smsCap.NvRevTotal = rev
	s.smsCap.NvSendTotal = send
	for _, m := range list {
		s.smsSeq = max(s.smsSeq, m.ID)
	}
	return nil
}

// MarkSmsRead 将未读短信标记为已读，返回变更数量
func (s *Store) MarkSmsRead(ids []int) int {
	var changed []int
	for i := range s.messages {
		m := &s.messages[i]
		if m.Tag == modem.TagUnread && slices.Contains(ids, m.ID) {
			m.Tag = modem.TagRead
			changed = append(changed, m.ID)
		}
	}

	if len(changed) > 0 {
		s.notify(models.EventSmsRead, changed)
	}
	return len(changed)
}

func (s *Store) smsDate(t string) string {
	if t == "" {
		return s.clock.Now().Format(SmsDateLayout)
	}
	return strings.ReplaceAll(t, ";", ",")
}

func smsEventType(tag modem.SmsTag) string {
	switch tag {
	case modem.TagSent:
		return models.EventSmsSent
	case modem.TagDeliveryReport:
		return models.EventSmsReport
	}
	return models.EventSmsReceived
}

// encodeText 正文按需编码为 UCS-2
func encodeText(text string, enc modem.Encoding) string {
	if enc == modem.UCS2 {
		return text
	}
	return modem.EncodeUCS2(text)
}

// encodeNumber 号码只有在包含非 ASCII 字符时才编码
func encodeNumber(number string, enc modem.Encoding) string {
	if enc == modem.UCS2 || modem.IsASCII(number) {
		return number
	}
	return modem.EncodeUCS2(number)
}

func plainText(text string, enc modem.Encoding) string {
	if enc == modem.UCS2 {
		return modem.DecodeUCS2Loose(text)
	}
	return text
}
