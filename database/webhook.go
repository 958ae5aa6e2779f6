package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rehiy/goform-simulator/models"
)

// CreateWebhook 创建 webhook
func CreateWebhook(webhook *models.Webhook) error {
	if err := db.Create(webhook).Error; err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	return nil
}

// UpdateWebhook 更新 webhook
func UpdateWebhook(webhook *models.Webhook) error {
	ret := db.Model(&models.Webhook{}).Where("id = ?", webhook.ID).Updates(map[string]any{
		"name":     webhook.Name,
		"url":      webhook.URL,
		"template": webhook.Template,
		"enabled":  webhook.Enabled,
	})
	if ret.Error != nil {
		return fmt.Errorf("failed to update webhook: %w", ret.Error)
	}
	if ret.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWebhook 删除 webhook
func DeleteWebhook(id int) error {
	ret := db.Delete(&models.Webhook{}, id)
	if ret.Error != nil {
		return fmt.Errorf("failed to delete webhook: %w", ret.Error)
	}
	if ret.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWebhook 按 ID 获取 webhook
func GetWebhook(id int) (*models.Webhook, error) {
	var webhook models.Webhook
	err := db.First(&webhook, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}
	return &webhook, nil
}

// GetWebhookList 获取全部 webhook
func GetWebhookList() ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := db.Order("id DESC").Find(&webhooks).Error; err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	return webhooks, nil
}

// GetEnabledWebhookList 获取启用的 webhook
func GetEnabledWebhookList() ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := db.Where("enabled = ?", true).Order("id DESC").Find(&webhooks).Error; err != nil {
		return nil, fmt.Errorf("failed to query enabled webhooks: %w", err)
	}
	return webhooks, nil
}
