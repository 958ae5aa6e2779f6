package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rehiy/goform-simulator/models"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// CreateSMS 归档一条短信
func CreateSMS(sms *models.SMS) error {
	if sms.Direction == "" {
		sms.Direction = models.DirectionIn
	}
	if sms.CreatedAt.IsZero() {
		sms.CreatedAt = time.Now()
	}

	if err := db.Create(sms).Error; err != nil {
		return fmt.Errorf("failed to save SMS: %w", err)
	}
	return nil
}

// BatchDeleteSMS 批量删除归档
func BatchDeleteSMS(ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ret := db.Where("id IN ?", ids).Delete(&models.SMS{})
	if ret.Error != nil {
		return 0, fmt.Errorf("failed to batch delete SMS: %w", ret.Error)
	}
	return ret.RowsAffected, nil
}

// GetSMSBySmsID 按设备短信编号查询归档
func GetSMSBySmsID(smsID int) (*models.SMS, error) {
	var sms models.SMS
	err := db.Where("sms_id = ?", smsID).Order("id DESC").First(&sms).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query SMS %d: %w", smsID, err)
	}
	return &sms, nil
}

// GetSMSList 按条件分页查询归档，返回列表和总数
func GetSMSList(filter *models.SMSFilter) ([]models.SMS, int, error) {
	query := db.Model(&models.SMS{})

	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.Number != "" {
		query = query.Where("number = ?", filter.Number)
	}
	if !filter.StartTime.IsZero() {
		query = query.Where("created_at >= ?", filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		query = query.Where("created_at <= ?", filter.EndTime)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count SMS: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	var list []models.SMS
	err := query.Order("id DESC").Limit(limit).Offset(filter.Offset).Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query SMS: %w", err)
	}
	return list, int(total), nil
}
