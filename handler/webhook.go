package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/service"
)

var errWebhookFields = errors.New("name and url are required")

// WebhookHandler 管理收到短信时的回调地址
type WebhookHandler struct {
	ws *service.WebhookService
}

// NewWebhookHandler 创建 Webhook 处理器
func NewWebhookHandler(ws *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{ws: ws}
}

// List GET /api/webhook
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	webhooks, err := database.GetWebhookList()
	if err != nil {
		fail(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, webhooks)
}

// Create POST /api/webhook
func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	webhook, err := readWebhook(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}

	if err := database.CreateWebhook(webhook); err != nil {
		fail(w, http.StatusInternalServerError, err)
		return
	}
	h.ws.InvalidateCache()
	respondJSON(w, http.StatusCreated, webhook)
}

// Get GET /api/webhook/{id}
func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	if webhook, ok := h.load(w, r); ok {
		respondJSON(w, http.StatusOK, webhook)
	}
}

// Update PUT /api/webhook/{id}
func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.load(w, r)
	if !ok {
		return
	}

	webhook, err := readWebhook(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	webhook.ID = current.ID
	webhook.CreatedAt = current.CreatedAt

	if err := database.UpdateWebhook(webhook); err != nil {
		respondDBError(w, err)
		return
	}
	h.ws.InvalidateCache()
	respondJSON(w, http.StatusOK, webhook)
}

// Delete DELETE /api/webhook/{id}
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	webhook, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := database.DeleteWebhook(webhook.ID); err != nil {
		respondDBError(w, err)
		return
	}
	h.ws.InvalidateCache()
	respondJSON(w, http.StatusOK, H{"status": "deleted", "id": webhook.ID})
}

// Test POST /api/webhook/{id}/test，用一条测试短信触发回调
func (h *WebhookHandler) Test(w http.ResponseWriter, r *http.Request) {
	webhook, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := h.ws.Test(webhook); err != nil {
		fail(w, http.StatusBadGateway, err)
		return
	}
	respondJSON(w, http.StatusOK, H{"status": "success", "message": "Webhook test sent successfully"})
}

// load 按路径中的 id 读取配置，失败时已写入应答
func (h *WebhookHandler) load(w http.ResponseWriter, r *http.Request) (*models.Webhook, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, errors.New("invalid id"))
		return nil, false
	}

	webhook, err := database.GetWebhook(id)
	if err != nil {
		respondDBError(w, err)
		return nil, false
	}
	return webhook, true
}

func readWebhook(r *http.Request) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := json.NewDecoder(r.Body).Decode(&webhook); err != nil {
		return nil, err
	}
	if webhook.Name == "" || webhook.URL == "" {
		return nil, errWebhookFields
	}

	// 空模板使用默认格式
	if webhook.Template == "" {
		webhook.Template = "{}"
	}
	return &webhook, nil
}

func respondDBError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		fail(w, http.StatusNotFound, err)
		return
	}
	fail(w, http.StatusInternalServerError, err)
}
