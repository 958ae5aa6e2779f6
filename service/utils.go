package service

import (
	"strconv"
	"strings"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

// parseIDs 解析分隔的编号列表，忽略空项和非数字
func parseIDs(s, sep string) []int {
	var ids []int
	for _, part := range strings.Split(s, sep) {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// textEncoding 优先使用请求声明的编码，否则按内容推测
func textEncoding(declared, text string) modem.Encoding {
	if enc, ok := modem.ParseEncoding(declared); ok {
		return enc
	}
	if modem.LooksUCS2(text) {
		return modem.UCS2
	}
	return modem.Plain
}

// directionOf 短信 tag 对应的归档方向
func directionOf(tag modem.SmsTag) string {
	switch tag {
	case modem.TagSent:
		return models.DirectionOut
	case modem.TagDeliveryReport:
		return models.DirectionReport
	}
	return models.DirectionIn
}

// messageToSMS 将设备短信转换为归档记录，文本解码为可读形式
func messageToSMS(msg models.SmsMessage) *models.SMS {
	// 字母发件人以 UCS-2 保存，短号码不解码
	number := msg.Number
	if len(number) >= 8 && !strings.HasPrefix(number, "+") && modem.LooksUCS2(number) {
		number = modem.DecodeUCS2Loose(number)
	}

	return &models.SMS{
		SmsID:      msg.ID,
		Direction:  directionOf(msg.Tag),
		Number:     number,
		Content:    modem.DecodeUCS2Loose(msg.Content),
		Tag:        msg.Tag.String(),
		DeviceTime: msg.Date,
	}
}
