package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/service"
)

// 归档列表的分页大小
const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// SmsdbHandler 短信归档查询
type SmsdbHandler struct {
	sim *service.Simulator
	svc *service.SmsdbService
}

// NewSmsdbHandler 创建短信归档处理器
func NewSmsdbHandler(sim *service.Simulator, svc *service.SmsdbService) *SmsdbHandler {
	return &SmsdbHandler{sim: sim, svc: svc}
}

// List GET /api/smsdb/list
func (h *SmsdbHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseSMSFilter(r.URL.Query())

	list, total, err := database.GetSMSList(filter)
	if err != nil {
		fail(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, H{
		"data":   list,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Delete POST /api/smsdb/delete，请求体 {"ids":[...]}
func (h *SmsdbHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	if len(req.IDs) == 0 {
		fail(w, http.StatusBadRequest, errors.New("no IDs provided"))
		return
	}

	count, err := database.BatchDeleteSMS(req.IDs)
	if err != nil {
		fail(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, H{"status": "deleted", "count": count})
}

// Sync POST /api/smsdb/sync，补录设备中尚未归档的短信
func (h *SmsdbHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SyncSMSToDB(h.sim.Messages())
	switch {
	case errors.Is(err, service.ErrArchiveUnavailable):
		fail(w, http.StatusServiceUnavailable, err)
	case err != nil:
		fail(w, http.StatusInternalServerError, err)
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

// parseSMSFilter 解析查询参数，非法值使用默认
func parseSMSFilter(q url.Values) *models.SMSFilter {
	filter := &models.SMSFilter{
		Direction: q.Get("direction"),
		Number:    q.Get("number"),
		Limit:     defaultPageSize,
	}

	if t, err := time.Parse(time.RFC3339, q.Get("start_time")); err == nil {
		filter.StartTime = t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("end_time")); err == nil {
		filter.EndTime = t
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= maxPageSize {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n >= 0 {
		filter.Offset = n
	}
	return filter
}
