package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/logger"
	"github.com/rehiy/goform-simulator/modem"
	"github.com/rehiy/goform-simulator/service"
)

// 版本信息缺失时的纯文本应答
const (
	VersionNotFound      = "version_info_not_found_in_mockData"
	VersionRouteNotFound = "version_info_not_found_in_mockData_for_specific_route"
)

// GoformHandler 设备 goform 接口
type GoformHandler struct {
	sim *service.Simulator
	log *zap.SugaredLogger
}

// NewGoformHandler 创建 goform 处理器
func NewGoformHandler(sim *service.Simulator) *GoformHandler {
	return &GoformHandler{sim: sim, log: logger.S()}
}

// GetCmd 处理 GET /goform/goform_get_cmd_process
func (h *GoformHandler) GetCmd(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := service.GetRequest{IsMulti: q.Get("isMulti") == "1", Tags: q.Get("tags")}
	if cmd := q.Get("cmd"); cmd != "" {
		req.Cmds = strings.Split(cmd, ",")
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.PerPage, _ = strconv.Atoi(q.Get("data_per_page"))

	res, err := h.sim.Get(req)
	switch {
	case errors.Is(err, service.ErrMissingCmd):
		fail(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrVersionNotFound):
		respondText(w, http.StatusNotFound, VersionNotFound)
	case err != nil:
		RespondError(w, err)
	case res.Text != "":
		respondText(w, http.StatusOK, res.Text)
	default:
		respondJSON(w, http.StatusOK, res.Fields)
	}
}

// SetCmd 处理 POST /goform/goform_set_cmd_process
func (h *GoformHandler) SetCmd(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, H{"result": modem.ResultFailure, "error": err.Error()})
		return
	}

	result, err := h.sim.Set(form)
	if err == nil {
		respondJSON(w, http.StatusOK, H{"result": result})
		return
	}

	var verr *service.ValidationError
	var uerr *service.UnhandledError
	switch {
	case errors.Is(err, service.ErrMissingGoformID):
		fail(w, http.StatusBadRequest, err)
	case errors.As(err, &verr), errors.As(err, &uerr):
		respondJSON(w, http.StatusBadRequest, H{"result": modem.ResultFailure, "error": err.Error()})
	default:
		RespondError(w, err)
	}
}

// Version 处理 GET /zte_web/web/version
func (h *GoformHandler) Version(w http.ResponseWriter, r *http.Request) {
	text, err := h.sim.VersionText()
	if err != nil {
		respondText(w, http.StatusNotFound, VersionRouteNotFound)
		return
	}
	respondText(w, http.StatusOK, text)
}

// readForm 读取表单或 JSON 请求体，每个字段只取第一个值
func readForm(r *http.Request) (service.Form, error) {
	form := service.Form{}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid json body: %w", err)
		}
		for k, v := range body {
			switch v := v.(type) {
			case string:
				form[k] = v
			case nil:
			default:
				form[k] = fmt.Sprint(v)
			}
		}
		return form, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			form[k] = v[0]
		}
	}
	return form, nil
}
