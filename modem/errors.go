package modem

import (
	"errors"
	"fmt"
)

// ErrMalformedUCS2 表示输入不是合法的 UCS-2 十六进制串
var ErrMalformedUCS2 = errors.New("malformed UCS-2 hex")

// DecodeError 记录严格解码失败的位置和原因
type DecodeError struct {
	Input  string
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode UCS-2 at offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrMalformedUCS2
}
