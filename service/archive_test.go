package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

func setupDB(t *testing.T) {
	t.Helper()
	if err := database.InitDB(database.MemoryDSN(t.Name())); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { database.Close() })
}

func TestMessageToSMS(t *testing.T) {
	tests := []struct {
		name string
		msg  models.SmsMessage
		want models.SMS
	}{
		{
			name: "alphanumeric sender",
			msg:  models.SmsMessage{ID: 3, Number: modem.EncodeUCS2("Equipo Digitel"), Content: modem.EncodeUCS2("hola"), Tag: modem.TagUnread, Date: "23,01,26,09,15,00"},
			want: models.SMS{SmsID: 3, Direction: models.DirectionIn, Number: "Equipo Digitel", Content: "hola", Tag: "1", DeviceTime: "23,01,26,09,15,00"},
		},
		{
			name: "short code kept",
			msg:  models.SmsMessage{ID: 8, Number: "4111", Content: modem.EncodeUCS2("x"), Tag: modem.TagSent},
			want: models.SMS{SmsID: 8, Direction: models.DirectionOut, Number: "4111", Content: "x", Tag: "2"},
		},
		{
			name: "delivery report",
			msg:  models.SmsMessage{ID: 9, Number: "+584120000001", Content: "not hex", Tag: modem.TagDeliveryReport},
			want: models.SMS{SmsID: 9, Direction: models.DirectionReport, Number: "+584120000001", Content: "not hex", Tag: "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messageToSMS(tt.msg); *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestSmsdbArchivesSentMessages(t *testing.T) {
	setupDB(t)
	sim, clock := newTestSimulator(t)
	sim.Subscribe(NewSmsdbService())

	mustSet(t, sim, Form{"goformId": "SEND_SMS", "Number": "+584120001111", "MessageBody": "hello"})
	clock.Advance(sendSmsDelay + 7*time.Second)

	list, total, err := database.GetSMSList(&models.SMSFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("total = %d", total)
	}
	// 按编号倒序
	if list[0].Direction != models.DirectionReport || list[1].Direction != models.DirectionOut {
		t.Errorf("directions = %s, %s", list[0].Direction, list[1].Direction)
	}
	if list[1].Content != "hello" || list[1].SmsID != 7 {
		t.Errorf("sent = %+v", list[1])
	}
}

func TestSmsdbDisabled(t *testing.T) {
	setupDB(t)
	if err := database.SetSmsdbEnabled(false); err != nil {
		t.Fatal(err)
	}

	NewSmsdbService().Notify(models.Event{Type: models.EventSmsReceived, Data: models.SmsMessage{ID: 1}})

	if _, err := database.GetSMSBySmsID(1); err == nil {
		t.Error("archived while disabled")
	}
}

func TestSyncSMSToDB(t *testing.T) {
	svc := NewSmsdbService()
	if _, err := svc.SyncSMSToDB(nil); err != ErrArchiveUnavailable {
		t.Errorf("err = %v", err)
	}

	setupDB(t)
	sim, _ := newTestSimulator(t)

	res, err := svc.SyncSMSToDB(sim.Messages())
	if err != nil {
		t.Fatal(err)
	}
	if res["totalCount"] != 6 || res["newCount"] != 6 {
		t.Errorf("first sync = %v", res)
	}

	res, err = svc.SyncSMSToDB(sim.Messages())
	if err != nil {
		t.Fatal(err)
	}
	if res["newCount"] != 0 {
		t.Errorf("second sync = %v", res)
	}

	sms, err := database.GetSMSBySmsID(5)
	if err != nil {
		t.Fatal(err)
	}
	if sms.Number != "Genesis D." || sms.Content != "Can you call me back?" {
		t.Errorf("sms 5 = %+v", sms)
	}
}

type webhookSink struct {
	mu     sync.Mutex
	bodies []map[string]any
	status []int
	hits   atomic.Int32
}

func (s *webhookSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(s.hits.Add(1))
	b, _ := io.ReadAll(r.Body)

	var body map[string]any
	json.Unmarshal(b, &body)

	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	code := http.StatusOK
	if n <= len(s.status) {
		code = s.status[n-1]
	}
	s.mu.Unlock()

	w.WriteHeader(code)
}

func newTestWebhookService() *WebhookService {
	w := NewWebhookService()
	w.retryDelay = time.Millisecond
	return w
}

func TestWebhookOnReceivedSms(t *testing.T) {
	setupDB(t)
	sink := &webhookSink{}
	srv := httptest.NewServer(sink)
	defer srv.Close()

	database.SetWebhookEnabled(true)
	database.CreateWebhook(&models.Webhook{Name: "sink", URL: srv.URL, Enabled: true})

	wh := newTestWebhookService()
	msg := models.SmsMessage{ID: 7, Number: "+584124773988", Content: modem.EncodeUCS2("ping"), Tag: modem.TagUnread, Date: "26,10,15,09,00,00"}

	wh.Notify(models.Event{Type: models.EventSmsSent, Data: msg})
	wh.Notify(models.Event{Type: models.EventSmsReceived, Time: epoch, Data: msg})
	wh.Wait()

	if sink.hits.Load() != 1 {
		t.Fatalf("hits = %d", sink.hits.Load())
	}
	body := sink.bodies[0]
	if body["event"] != models.EventSmsReceived {
		t.Errorf("event = %v", body["event"])
	}
	data := body["data"].(map[string]any)
	if data["content"] != "ping" || data["number"] != "+584124773988" || data["direction"] != "in" {
		t.Errorf("data = %v", data)
	}
	if data["created_at"] != "2026-10-15T09:00:00Z" {
		t.Errorf("created_at = %v", data["created_at"])
	}
}

func TestWebhookDisabled(t *testing.T) {
	setupDB(t)
	sink := &webhookSink{}
	srv := httptest.NewServer(sink)
	defer srv.Close()

	database.CreateWebhook(&models.Webhook{Name: "sink", URL: srv.URL, Enabled: true})

	wh := newTestWebhookService()
	wh.Notify(models.Event{Type: models.EventSmsReceived, Data: models.SmsMessage{ID: 1}})
	wh.Wait()

	if sink.hits.Load() != 0 {
		t.Errorf("hits = %d", sink.hits.Load())
	}
}

func TestWebhookTemplate(t *testing.T) {
	sink := &webhookSink{}
	srv := httptest.NewServer(sink)
	defer srv.Close()

	wh := newTestWebhookService()
	err := wh.triggerWebhook(&models.Webhook{
		Name:     "tpl",
		URL:      srv.URL,
		Template: `{"text":"{{number}}: {{content}}","meta":{"id":"{{sms_id}}","n":1}}`,
	}, &models.SMS{SmsID: 4, Number: "+1", Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	body := sink.bodies[0]
	if body["text"] != "+1: hi" {
		t.Errorf("text = %v", body["text"])
	}
	meta := body["meta"].(map[string]any)
	if meta["id"] != "4" || meta["n"] != float64(1) {
		t.Errorf("meta = %v", meta)
	}
}

func TestWebhookRetry(t *testing.T) {
	tests := []struct {
		name     string
		status   []int
		wantHits int32
		wantErr  bool
	}{
		{"recovers after 5xx", []int{500, 502}, 3, false},
		{"gives up", []int{500, 500, 500}, 3, true},
		{"4xx is final", []int{404}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &webhookSink{status: tt.status}
			srv := httptest.NewServer(sink)
			defer srv.Close()

			err := newTestWebhookService().triggerWebhook(&models.Webhook{Name: "r", URL: srv.URL}, &models.SMS{})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v", err)
			}
			if sink.hits.Load() != tt.wantHits {
				t.Errorf("hits = %d, want %d", sink.hits.Load(), tt.wantHits)
			}
		})
	}
}

func TestWebhookCache(t *testing.T) {
	setupDB(t)
	wh := newTestWebhookService()

	database.CreateWebhook(&models.Webhook{Name: "a", URL: "http://127.0.0.1:1", Enabled: true})
	list, err := wh.getCachedWebhooks()
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, err = %v", list, err)
	}

	database.CreateWebhook(&models.Webhook{Name: "b", URL: "http://127.0.0.1:1", Enabled: true})
	if list, _ := wh.getCachedWebhooks(); len(list) != 1 {
		t.Errorf("cache not used: %d", len(list))
	}

	wh.InvalidateCache()
	if list, _ := wh.getCachedWebhooks(); len(list) != 2 {
		t.Errorf("after invalidate: %d", len(list))
	}
}
