package state

import "errors"

var (
	// ErrSmsStorageFull 收件箱与发件箱总数已达到 sms_nv_total
	ErrSmsStorageFull = errors.New("sms storage is full")

	// ErrPhonebookFull 目标位置的联系人数量已达到上限
	ErrPhonebookFull = errors.New("phonebook is full")

	// ErrDuplicateID 整体替换的列表中存在重复编号
	ErrDuplicateID = errors.New("duplicate id")

	// ErrDerivedField 字段由其他状态推导，不能直接写入
	ErrDerivedField = errors.New("field is derived and cannot be set")
)
