package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCmd 查询请求缺少 cmd
	ErrMissingCmd = errors.New("cmd parameter is missing")

	// ErrMissingGoformID 设置请求缺少 goformId
	ErrMissingGoformID = errors.New("goformId parameter is missing")

	// ErrVersionNotFound 设备没有完整的版本信息
	ErrVersionNotFound = errors.New("version_info_not_found")
)

// ValidationError 命令缺少必填字段或字段取值非法
type ValidationError struct {
	GoformID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required for %s", e.Field, e.GoformID)
	}
	return fmt.Sprintf("invalid %s for %s: %s", e.Field, e.GoformID, e.Reason)
}

// UnhandledError 未知的 goformId
type UnhandledError struct {
	GoformID string
}

func (e *UnhandledError) Error() string {
	return "Unhandled goformId: " + e.GoformID
}
