package database

import (
	"fmt"
	"strconv"

	"github.com/rehiy/goform-simulator/models"
)

// 设置项
const (
	SettingSmsdbEnabled   = "smsdb_enabled"
	SettingWebhookEnabled = "webhook_enabled"
)

var defaultSettings = map[string]string{
	SettingSmsdbEnabled:   "true",
	SettingWebhookEnabled: "false",
}

// GetSettings 获取所有设置
func GetSettings() (map[string]string, error) {
	var settings []models.Setting
	if err := db.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	result := make(map[string]string, len(settings))
	for _, s := range settings {
		result[s.Key] = s.Value
	}
	return result, nil
}

// IsSmsdbEnabled 短信归档是否启用
func IsSmsdbEnabled() bool {
	return getBool(SettingSmsdbEnabled)
}

// SetSmsdbEnabled 设置短信归档开关
func SetSmsdbEnabled(enabled bool) error {
	return setBool(SettingSmsdbEnabled, enabled)
}

// IsWebhookEnabled webhook 是否启用
func IsWebhookEnabled() bool {
	return getBool(SettingWebhookEnabled)
}

// SetWebhookEnabled 设置 webhook 开关
func SetWebhookEnabled(enabled bool) error {
	return setBool(SettingWebhookEnabled, enabled)
}

// InitDefaultSettings 写入缺失的默认设置
func InitDefaultSettings() error {
	for key, value := range defaultSettings {
		setting := models.Setting{Key: key, Value: value}
		if err := db.FirstOrCreate(&setting, models.Setting{Key: key}).Error; err != nil {
			return fmt.Errorf("failed to insert default setting: %w", err)
		}
	}
	return nil
}

func getBool(key string) bool {
	if db == nil {
		return false
	}
	var setting models.Setting
	if err := db.Where("key = ?", key).First(&setting).Error; err != nil {
		return false
	}
	v, _ := strconv.ParseBool(setting.Value)
	return v
}

func setBool(key string, enabled bool) error {
	setting := models.Setting{Key: key, Value: strconv.FormatBool(enabled)}
	err := db.Where(models.Setting{Key: key}).Assign(setting).FirstOrCreate(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
