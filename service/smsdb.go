package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/logger"
	"github.com/rehiy/goform-simulator/models"
)

// ErrArchiveUnavailable 归档数据库未初始化
var ErrArchiveUnavailable = errors.New("sms archive is not available")

// SmsdbService 把模拟器处理过的短信归档到数据库
type SmsdbService struct {
	log *zap.SugaredLogger
}

// NewSmsdbService 创建短信归档服务
func NewSmsdbService() *SmsdbService {
	return &SmsdbService{log: logger.S()}
}

// Notify 归档新增的短信，在逻辑线程上同步执行
func (s *SmsdbService) Notify(ev models.Event) {
	msg, ok := ev.Data.(models.SmsMessage)
	if !ok || !database.IsSmsdbEnabled() {
		return
	}

	if err := database.CreateSMS(messageToSMS(msg)); err != nil {
		s.log.Warnf("[smsdb] failed to archive sms %d: %v", msg.ID, err)
	}
}

// SyncSMSToDB 归档设备中尚未归档的短信
func (s *SmsdbService) SyncSMSToDB(messages []models.SmsMessage) (map[string]any, error) {
	if database.GetDB() == nil {
		return nil, ErrArchiveUnavailable
	}

	newCount := 0
	for _, msg := range messages {
		if _, err := database.GetSMSBySmsID(msg.ID); err == nil {
			continue
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to check sms %d: %w", msg.ID, err)
		}

		if err := database.CreateSMS(messageToSMS(msg)); err != nil {
			s.log.Warnf("[smsdb] failed to archive sms %d: %v", msg.ID, err)
			continue
		}
		newCount++
	}

	s.log.Infof("[smsdb] synced %d of %d messages", newCount, len(messages))
	return map[string]any{
		"totalCount": len(messages),
		"newCount":   newCount,
	}, nil
}
