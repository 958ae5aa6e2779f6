package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rehiy/goform-simulator/database"
	"github.com/rehiy/goform-simulator/events"
	"github.com/rehiy/goform-simulator/handler"
	"github.com/rehiy/goform-simulator/logger"
	"github.com/rehiy/goform-simulator/service"
)

// Deps 路由依赖的服务
type Deps struct {
	Simulator *service.Simulator
	Events    *events.EventListener
	Smsdb     *service.SmsdbService
	Webhook   *service.WebhookService
}

// Apply 构建完整的 HTTP 处理链
func Apply(d Deps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	GoformRegister(r, d.Simulator)
	WebSocketRegister(r, d.Events)

	// API 路由
	api := r.PathPrefix("/api").Subrouter()
	SimulatorRegister(r, api, d.Simulator)
	if database.GetDB() != nil {
		SmsdbRegister(api, d.Simulator, d.Smsdb)
		WebhookRegister(api, d.Webhook)
		SettingRegister(api)
	}

	var h http.Handler = r
	h = Recover(h)
	h = middleware.Logger(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return Cors().Handler(h)
}

// Cors 允许任意来源访问。
// 请求头不限定名单：预检中的 Access-Control-Request-Headers 大小写和顺序因客户端而异，
// 固定名单只匹配小写且排序过的写法。
func Cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedHeaders:       []string{"*"},
		AllowedMethods:       []string{http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodGet},
		OptionsSuccessStatus: http.StatusOK,
	})
}

// Recover 把处理器中的 panic 转换为 500 应答
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.S().Errorf("[http] %s %s panic: %v", r.Method, r.URL.Path, v)
				handler.RespondError(w, fmt.Errorf("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	handler.RespondError(w, &handler.StatusError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Not Found - %s %s", r.Method, r.URL.RequestURI()),
	})
}

func GoformRegister(r *mux.Router, sim *service.Simulator) {
	gh := handler.NewGoformHandler(sim)

	// 设备接口
	r.HandleFunc("/goform/goform_get_cmd_process", gh.GetCmd).Methods("GET")
	r.HandleFunc("/goform/goform_set_cmd_process", gh.SetCmd).Methods("POST")
	r.HandleFunc("/zte_web/web/version", gh.Version).Methods("GET")
}

func SimulatorRegister(r, api *mux.Router, sim *service.Simulator) {
	sh := handler.NewSimulatorHandler(sim)

	r.HandleFunc("/health", sh.Health).Methods("GET")
	api.HandleFunc("/simulator/updater", sh.GetUpdater).Methods("GET")
	api.HandleFunc("/simulator/updater", sh.UpdateUpdater).Methods("PUT")
	api.HandleFunc("/simulator/state", sh.UpdateState).Methods("PUT")
}

func SmsdbRegister(r *mux.Router, sim *service.Simulator, svc *service.SmsdbService) {
	dh := handler.NewSmsdbHandler(sim, svc)

	// 短信归档
	r.HandleFunc("/smsdb/list", dh.List).Methods("GET")
	r.HandleFunc("/smsdb/delete", dh.Delete).Methods("POST")
	r.HandleFunc("/smsdb/sync", dh.Sync).Methods("POST")
}

func WebhookRegister(r *mux.Router, ws *service.WebhookService) {
	wh := handler.NewWebhookHandler(ws)

	// Webhook 配置管理
	r.HandleFunc("/webhook", wh.List).Methods("GET")
	r.HandleFunc("/webhook", wh.Create).Methods("POST")
	r.HandleFunc("/webhook/{id:[0-9]+}", wh.Get).Methods("GET")
	r.HandleFunc("/webhook/{id:[0-9]+}", wh.Update).Methods("PUT")
	r.HandleFunc("/webhook/{id:[0-9]+}", wh.Delete).Methods("DELETE")
	r.HandleFunc("/webhook/{id:[0-9]+}/test", wh.Test).Methods("POST")
}

func SettingRegister(r *mux.Router) {
	sh := handler.NewSettingHandler()

	// 设置管理
	r.HandleFunc("/settings", sh.Get).Methods("GET")
	r.HandleFunc("/settings", sh.Update).Methods("PUT")
}

func WebSocketRegister(r *mux.Router, el *events.EventListener) {
	ws := handler.NewWebSocketHandler(el)

	r.HandleFunc("/ws/events", ws.HandleWebSocket)
}
