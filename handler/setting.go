package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rehiy/goform-simulator/database"
)

// SettingHandler 归档和 webhook 开关
type SettingHandler struct{}

// NewSettingHandler 创建设置处理器
func NewSettingHandler() *SettingHandler {
	return &SettingHandler{}
}

// Get GET /api/settings
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := database.GetSettings()
	if err != nil {
		fail(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Update PUT /api/settings，只修改请求中给出的开关
func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SmsdbEnabled   *bool `json:"smsdb_enabled"`
		WebhookEnabled *bool `json:"webhook_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	if req.SmsdbEnabled == nil && req.WebhookEnabled == nil {
		fail(w, http.StatusBadRequest, errors.New("no setting provided"))
		return
	}

	if req.SmsdbEnabled != nil {
		if err := database.SetSmsdbEnabled(*req.SmsdbEnabled); err != nil {
			fail(w, http.StatusInternalServerError, err)
			return
		}
	}
	if req.WebhookEnabled != nil {
		if err := database.SetWebhookEnabled(*req.WebhookEnabled); err != nil {
			fail(w, http.StatusInternalServerError, err)
			return
		}
	}

	h.Get(w, r)
}
