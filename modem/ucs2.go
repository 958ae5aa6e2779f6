package modem

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Encoding 文本字段的编码方式
type Encoding int

const (
	Plain Encoding = iota // 可读文本，写入前需要编码
	UCS2                  // 已经是 UCS-2 十六进制
)

func (e Encoding) String() string {
	if e == UCS2 {
		return "UCS2"
	}
	return "PLAIN"
}

// ParseEncoding 解析请求中的 encode_type 字段。
// GSM7_default 只说明设备侧字符集，网页端提交的正文依旧是 UCS-2 十六进制，
// 因此不视为声明了正文编码，ok 为 false。
func ParseEncoding(s string) (Encoding, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNICODE", "UCS2", "UCS-2":
		return UCS2, true
	case "PLAIN", "TEXT":
		return Plain, true
	}
	return Plain, false
}

// EncodeUCS2 将字符串编码为 UCS-2 十六进制字符串
func EncodeUCS2(s string) string {
	u16 := utf16.Encode([]rune(s))
	var sb strings.Builder
	sb.Grow(len(u16) * 4)
	for _, r := range u16 {
		fmt.Fprintf(&sb, "%04X", r)
	}
	return sb.String()
}

// DecodeUCS2 严格解码 UCS-2 十六进制字符串
func DecodeUCS2(s string) (string, error) {
	if len(s)%4 != 0 {
		return "", &DecodeError{Input: s, Offset: len(s) - len(s)%4, Reason: "length is not a multiple of 4"}
	}

	u16 := make([]uint16, len(s)/4)
	for i := range u16 {
		var v uint16
		for j := 0; j < 4; j++ {
			n, ok := hexNibble(s[i*4+j])
			if !ok {
				return "", &DecodeError{Input: s, Offset: i*4 + j, Reason: fmt.Sprintf("invalid hex digit %q", s[i*4+j])}
			}
			v = v<<4 | uint16(n)
		}
		u16[i] = v
	}

	// utf16.Decode 合并相邻的高低代理，孤立代理替换为 U+FFFD
	return string(utf16.Decode(u16)), nil
}

// DecodeUCS2Loose 宽松解码，失败时原样返回输入
func DecodeUCS2Loose(s string) string {
	text, err := DecodeUCS2(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return text
}

// LooksUCS2 猜测字符串是否已经是 UCS-2 十六进制。
// 仅用于兼容未声明编码的客户端：由十六进制数字组成且长度为 4 的倍数的普通文本
// （例如 "CAFE" 或 "1234"）会被误判。
func LooksUCS2(s string) bool {
	if s == "" || len(s)%4 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := hexNibble(s[i]); !ok {
			return false
		}
	}
	return true
}

// IsASCII 判断字符串是否只包含 ASCII 字符
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
