package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/service"
)

func setupDB(t *testing.T) {
	t.Helper()
	if err := database.InitDB(database.MemoryDSN(t.Name())); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { database.Close() })
}

func call(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSmsdbHandler(t *testing.T) {
	setupDB(t)
	sim, clock := newTestSimulator(t)
	svc := service.NewSmsdbService()
	sim.Subscribe(svc)
	h := NewSmsdbHandler(sim, svc)

	rec := call(h.Sync, http.MethodPost, "/api/smsdb/sync", "")
	if rec.Code != http.StatusOK || decodeJSON(t, rec)["newCount"] != float64(6) {
		t.Fatalf("sync: %d %s", rec.Code, rec.Body)
	}

	sim.Set(service.Form{"goformId": "SEND_SMS", "Number": "+1", "MessageBody": "hi"})
	clock.Advance(1500 * time.Millisecond)

	rec = call(h.List, http.MethodGet, "/api/smsdb/list?direction=out&limit=10", "")
	body := decodeJSON(t, rec)
	if body["total"] != float64(2) || body["limit"] != float64(10) {
		t.Fatalf("list: %s", rec.Body)
	}
	first := body["data"].([]any)[0].(map[string]any)
	if first["content"] != "hi" || first["sms_id"] != float64(7) {
		t.Errorf("first = %v", first)
	}

	id := int(first["id"].(float64))
	rec = call(h.Delete, http.MethodPost, "/api/smsdb/delete", fmt.Sprintf(`{"ids":[%d]}`, id))
	if rec.Code != http.StatusOK || decodeJSON(t, rec)["count"] != float64(1) {
		t.Errorf("delete: %d %s", rec.Code, rec.Body)
	}

	rec = call(h.Delete, http.MethodPost, "/api/smsdb/delete", `{"ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty delete status = %d", rec.Code)
	}
}

func TestParseSMSFilter(t *testing.T) {
	f := parseSMSFilter(url.Values{"limit": {"500"}, "offset": {"-1"}, "start_time": {"2026-10-15T09:00:00Z"}})
	if f.Limit != defaultPageSize || f.Offset != 0 || f.StartTime.IsZero() {
		t.Errorf("filter = %+v", f)
	}
}

func TestSmsdbSyncWithoutDatabase(t *testing.T) {
	sim, _ := newTestSimulator(t)
	h := NewSmsdbHandler(sim, service.NewSmsdbService())

	rec := call(h.Sync, http.MethodPost, "/api/smsdb/sync", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestWebhookHandler(t *testing.T) {
	setupDB(t)
	var hits atomic.Int32
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer sink.Close()

	wh := NewWebhookHandler(service.NewWebhookService())
	r := mux.NewRouter()
	r.HandleFunc("/webhook", wh.List).Methods("GET")
	r.HandleFunc("/webhook", wh.Create).Methods("POST")
	r.HandleFunc("/webhook/{id}", wh.Get).Methods("GET")
	r.HandleFunc("/webhook/{id}", wh.Update).Methods("PUT")
	r.HandleFunc("/webhook/{id}", wh.Delete).Methods("DELETE")
	r.HandleFunc("/webhook/{id}/test", wh.Test).Methods("POST")

	do := func(method, target, body string) *httptest.ResponseRecorder {
		return call(r.ServeHTTP, method, target, body)
	}

	if rec := do(http.MethodPost, "/webhook", `{"name":"a"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create status = %d", rec.Code)
	}

	rec := do(http.MethodPost, "/webhook", fmt.Sprintf(`{"name":"sink","url":%q,"enabled":true}`, sink.URL))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	created := decodeJSON(t, rec)
	if created["template"] != "{}" {
		t.Errorf("template = %v", created["template"])
	}
	path := fmt.Sprintf("/webhook/%d", int(created["id"].(float64)))

	if rec := do(http.MethodPut, path, fmt.Sprintf(`{"name":"renamed","url":%q}`, sink.URL)); rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}

	got := decodeJSON(t, do(http.MethodGet, path, ""))
	if got["name"] != "renamed" || got["enabled"] != false {
		t.Errorf("get = %v", got)
	}

	rec = do(http.MethodPost, path+"/test", "")
	if rec.Code != http.StatusOK || hits.Load() != 1 {
		t.Errorf("test: %d %s, hits %d", rec.Code, rec.Body, hits.Load())
	}

	rec = do(http.MethodGet, "/webhook", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "renamed") {
		t.Errorf("list: %d %s", rec.Code, rec.Body)
	}

	if rec := do(http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Errorf("delete: %d %s", rec.Code, rec.Body)
	}
	if rec := do(http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d", rec.Code)
	}
	if rec := do(http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("delete twice status = %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/webhook/x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rec.Code)
	}
}

func TestSettingHandler(t *testing.T) {
	setupDB(t)
	h := NewSettingHandler()

	rec := call(h.Update, http.MethodPut, "/api/settings", `{"webhook_enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}
	body := decodeJSON(t, rec)
	if body["webhook_enabled"] != "true" || body["smsdb_enabled"] != "true" {
		t.Errorf("settings = %v", body)
	}
	if !database.IsWebhookEnabled() {
		t.Error("webhook not enabled")
	}

	if rec := call(h.Update, http.MethodPut, "/api/settings", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty update status = %d", rec.Code)
	}

	call(h.Update, http.MethodPut, "/api/settings", `{"smsdb_enabled":false}`)
	if database.IsSmsdbEnabled() || !database.IsWebhookEnabled() {
		t.Error("partial update touched the other toggle")
	}
}

func TestSimulatorHandler(t *testing.T) {
	sim, _ := newTestSimulator(t)
	h := NewSimulatorHandler(sim)

	rec := call(h.UpdateUpdater, http.MethodPut, "/api/simulator/updater", `{"running":true}`)
	body := decodeJSON(t, rec)
	if body["running"] != true || body["changed"] != true {
		t.Errorf("start = %v", body)
	}

	rec = call(h.UpdateUpdater, http.MethodPut, "/api/simulator/updater", `{"running":true}`)
	if decodeJSON(t, rec)["changed"] != false {
		t.Errorf("second start = %s", rec.Body)
	}

	rec = call(h.Health, http.MethodGet, "/health", "")
	if body := decodeJSON(t, rec); body["status"] != "ok" || body["updater"] != true {
		t.Errorf("health = %v", body)
	}

	rec = call(h.UpdateUpdater, http.MethodPut, "/api/simulator/updater", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing running status = %d", rec.Code)
	}

	rec = call(h.UpdateState, http.MethodPut, "/api/simulator/state", `{"signalbar":"4","network_type":"GSM"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("state: %d %s", rec.Code, rec.Body)
	}
	res, _ := sim.Get(service.GetRequest{Cmds: []string{"signalbar", "network_type"}})
	if res.Fields["signalbar"] != "4" || res.Fields["network_type"] != "GSM" {
		t.Errorf("fields = %v", res.Fields)
	}

	rec = call(h.UpdateState, http.MethodPut, "/api/simulator/state", `{"sms_unread_num":"9"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "sms_unread_num") {
		t.Errorf("derived: %d %s", rec.Code, rec.Body)
	}
}
