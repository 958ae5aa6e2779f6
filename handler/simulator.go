package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rehiy/goform-simulator/service"
)

// SimulatorHandler 模拟器运行状态
type SimulatorHandler struct {
	sim *service.Simulator
}

// NewSimulatorHandler 创建运行状态处理器
func NewSimulatorHandler(sim *service.Simulator) *SimulatorHandler {
	return &SimulatorHandler{sim: sim}
}

// Health 健康检查
func (h *SimulatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, H{"status": "ok", "updater": h.sim.Running()})
}

// GetUpdater 自动更新是否在运行
func (h *SimulatorHandler) GetUpdater(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, H{"running": h.sim.Running()})
}

// UpdateUpdater 启动或停止自动更新
func (h *SimulatorHandler) UpdateUpdater(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Running *bool `json:"running"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	if req.Running == nil {
		respondJSON(w, http.StatusBadRequest, H{"error": "running is required"})
		return
	}

	var changed bool
	if *req.Running {
		changed = h.sim.Start()
	} else {
		changed = h.sim.Stop()
	}

	respondJSON(w, http.StatusOK, H{"running": h.sim.Running(), "changed": changed})
}

// UpdateState 直接写入状态字段，返回被拒绝的字段和原因
func (h *SimulatorHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}

	rejected := H{}
	for key, v := range req {
		if err := h.sim.SetState(key, v); err != nil {
			rejected[key] = err.Error()
		}
	}

	if len(rejected) > 0 {
		respondJSON(w, http.StatusBadRequest, H{"error": "some fields were rejected", "rejected": rejected})
		return
	}
	respondJSON(w, http.StatusOK, H{"status": "updated", "count": len(req)})
}
