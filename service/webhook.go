package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/logger"
	"github.com/rehiy/goform-simulator/models"
)

const webhookCacheTTL = 30 * time.Second

// WebhookService 收到短信时回调外部地址
type WebhookService struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *zap.SugaredLogger

	cache     []models.Webhook
	cacheTime time.Time
	cacheMu   sync.RWMutex

	wg sync.WaitGroup
}

// NewWebhookService 创建 webhook 服务
func NewWebhookService() *WebhookService {
	return &WebhookService{
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		log:        logger.S(),
	}
}

// Notify 收到短信时异步触发 webhook，不阻塞逻辑线程
func (w *WebhookService) Notify(ev models.Event) {
	if ev.Type != models.EventSmsReceived {
		return
	}
	msg, ok := ev.Data.(models.SmsMessage)
	if !ok || !database.IsWebhookEnabled() {
		return
	}

	sms := messageToSMS(msg)
	sms.CreatedAt = ev.Time

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				w.log.Errorf("[webhook] panic recovered: %v", r)
			}
		}()
		if err := w.TriggerWebhooks(sms); err != nil {
			w.log.Warnf("[webhook] failed to trigger webhooks: %v", err)
		}
	}()
}

// Wait 等待进行中的回调结束
func (w *WebhookService) Wait() {
	w.wg.Wait()
}

// InvalidateCache 配置变更后丢弃缓存
func (w *WebhookService) InvalidateCache() {
	w.cacheMu.Lock()
	w.cache = nil
	w.cacheTime = time.Time{}
	w.cacheMu.Unlock()
}

// getCachedWebhooks 获取缓存的 webhook 列表
func (w *WebhookService) getCachedWebhooks() ([]models.Webhook, error) {
	w.cacheMu.RLock()
	if time.Since(w.cacheTime) < webhookCacheTTL && w.cache != nil {
		webhooks := w.cache
		w.cacheMu.RUnlock()
		return webhooks, nil
	}
	w.cacheMu.RUnlock()

	webhooks, err := database.GetEnabledWebhookList()
	if err != nil {
		return nil, err
	}

	w.cacheMu.Lock()
	w.cache = webhooks
	w.cacheTime = time.Now()
	w.cacheMu.Unlock()
	return webhooks, nil
}

// TriggerWebhooks 触发所有启用的 webhook
func (w *WebhookService) TriggerWebhooks(sms *models.SMS) error {
	webhooks, err := w.getCachedWebhooks()
	if err != nil {
		return fmt.Errorf("failed to get enabled webhooks: %w", err)
	}
	if len(webhooks) == 0 {
		return nil
	}

	// 并发数限制为 5
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5)

	for _, webhook := range webhooks {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(wh models.Webhook) {
			defer wg.Done()
			defer func() { <-semaphore }()
			w.triggerWebhook(&wh, sms)
		}(webhook)
	}

	wg.Wait()
	w.log.Infof("[webhook] triggered %d webhooks for sms %d", len(webhooks), sms.SmsID)
	return nil
}

// triggerWebhook 触发单个 webhook，5xx 和网络错误按指数退避重试
func (w *WebhookService) triggerWebhook(webhook *models.Webhook, sms *models.SMS) error {
	payload, err := w.preparePayload(webhook, sms)
	if err != nil {
		return err
	}

	delay := w.retryDelay
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		if attempt > 0 {
			w.log.Infof("[webhook] retry %d for %s", attempt, webhook.Name)
			time.Sleep(delay)
			delay *= 2
		}

		req, err := http.NewRequest(http.MethodPost, webhook.URL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("invalid webhook %s: %w", webhook.Name, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Goform-Simulator/1.0")

		start := time.Now()
		resp, err := w.client.Do(req)
		if err != nil {
			w.log.Warnf("[webhook] request to %s failed (attempt %d): %v", webhook.Name, attempt+1, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			w.log.Infof("[webhook] %s ok (status %d, %v)", webhook.Name, resp.StatusCode, time.Since(start))
			return nil
		}

		w.log.Warnf("[webhook] %s returned %d (attempt %d)", webhook.Name, resp.StatusCode, attempt+1)
		if resp.StatusCode < 500 {
			return fmt.Errorf("webhook %s rejected with status %d", webhook.Name, resp.StatusCode)
		}
	}

	return fmt.Errorf("failed to trigger webhook %s after %d attempts", webhook.Name, w.maxRetries)
}

// preparePayload 模板为空或无效时使用默认格式
func (w *WebhookService) preparePayload(webhook *models.Webhook, sms *models.SMS) ([]byte, error) {
	if webhook.Template == "" || webhook.Template == "{}" {
		return w.defaultPayload(sms)
	}

	var template map[string]any
	if err := json.Unmarshal([]byte(webhook.Template), &template); err != nil {
		w.log.Warnf("[webhook] invalid template for %s, using default: %v", webhook.Name, err)
		return w.defaultPayload(sms)
	}

	return json.Marshal(w.replaceTemplateVariables(template, sms))
}

func (w *WebhookService) defaultPayload(sms *models.SMS) ([]byte, error) {
	return json.Marshal(map[string]any{
		"event": models.EventSmsReceived,
		"data": map[string]any{
			"sms_id":      sms.SmsID,
			"number":      sms.Number,
			"content":     sms.Content,
			"tag":         sms.Tag,
			"device_time": sms.DeviceTime,
			"direction":   sms.Direction,
			"created_at":  sms.CreatedAt.Format(time.RFC3339),
		},
		"timestamp": time.Now().Unix(),
	})
}

// replaceTemplateVariables 递归替换模板中的变量
func (w *WebhookService) replaceTemplateVariables(template map[string]any, sms *models.SMS) map[string]any {
	result := make(map[string]any, len(template))
	for key, value := range template {
		switch v := value.(type) {
		case string:
			result[key] = replaceStringVariables(v, sms)
		case map[string]any:
			result[key] = w.replaceTemplateVariables(v, sms)
		default:
			result[key] = value
		}
	}
	return result
}

func replaceStringVariables(s string, sms *models.SMS) string {
	return strings.NewReplacer(
		"{{sms_id}}", strconv.Itoa(sms.SmsID),
		"{{number}}", sms.Number,
		"{{content}}", sms.Content,
		"{{tag}}", sms.Tag,
		"{{device_time}}", sms.DeviceTime,
		"{{direction}}", sms.Direction,
		"{{created_at}}", sms.CreatedAt.Format(time.RFC3339),
	).Replace(s)
}

// Test 用测试短信触发一次 webhook
func (w *WebhookService) Test(webhook *models.Webhook) error {
	return w.triggerWebhook(webhook, &models.SMS{
		SmsID:      0,
		Direction:  models.DirectionIn,
		Number:     "+584120000000",
		Content:    "Test webhook message",
		Tag:        "1",
		DeviceTime: time.Now().Format("06,01,02,15,04,05"),
		CreatedAt:  time.Now(),
	})
}
