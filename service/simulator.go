package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/sched"
	"github.com/rehiy/goform-simulator/state"
)

// Options 模拟器参数
type Options struct {
	Tick          time.Duration // 自动更新间隔
	AdminPassword string        // 为空时使用初始数据中的密码
}

// Simulator 一台模拟设备。
// 对外的方法都通过调度器的逻辑线程访问状态，可以并发调用。
type Simulator struct {
	sched   *sched.Scheduler
	store   *state.Store
	disp    *Dispatcher
	updater *Updater
	obs     *fanout
	log     *zap.SugaredLogger
}

// NewSimulator 创建模拟器并载入初始状态
func NewSimulator(s *sched.Scheduler, rnd state.Rand, opts Options, log *zap.SugaredLogger) *Simulator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	store := state.New(s, rnd, log)
	if opts.AdminPassword != "" {
		store.Set("admin_Password", opts.AdminPassword)
	}

	obs := &fanout{}
	store.SetObserver(obs)

	return &Simulator{
		sched:   s,
		store:   store,
		disp:    NewDispatcher(store, s, log),
		updater: NewUpdater(store, s, rnd, opts.Tick, log),
		obs:     obs,
		log:     log,
	}
}

// Subscribe 注册状态事件接收者
func (m *Simulator) Subscribe(o state.Observer) {
	m.obs.add(o)
}

// Get 处理查询请求
func (m *Simulator) Get(req GetRequest) (res GetResult, err error) {
	m.sched.Do(func() {
		res, err = m.disp.Get(req)
	})
	return
}

// Set 处理设置请求，异步部分交给调度器
func (m *Simulator) Set(form Form) (result string, err error) {
	m.sched.Do(func() {
		result, err = m.disp.Set(form)
	})
	return
}

// VersionText 版本信息文本
func (m *Simulator) VersionText() (text string, err error) {
	m.sched.Do(func() {
		text, err = m.disp.VersionText()
	})
	return
}

// SetState 直接写入状态字段，用于测试和调试
func (m *Simulator) SetState(key string, v any) (err error) {
	m.sched.Do(func() {
		err = m.store.Set(key, v)
	})
	return
}

// Messages 设备中短信的快照
func (m *Simulator) Messages() (list []models.SmsMessage) {
	m.sched.Do(func() {
		list = m.store.Messages()
	})
	return
}

// Start 启动自动更新
func (m *Simulator) Start() bool {
	return m.updater.Start()
}

// Stop 停止自动更新
func (m *Simulator) Stop() bool {
	return m.updater.Stop()
}

// Running 自动更新是否在运行
func (m *Simulator) Running() bool {
	return m.updater.Running()
}

// Run 驱动调度器直到 ctx 结束
func (m *Simulator) Run(ctx context.Context) {
	m.log.Infof("[simulator] scheduler running")
	m.sched.Run(ctx)
	m.log.Infof("[simulator] scheduler stopped, %d tasks dropped", m.sched.Pending())
}

// fanout 把事件分发给多个接收者
type fanout struct {
	mu   sync.RWMutex
	list []state.Observer
}

func (f *fanout) add(o state.Observer) {
	f.mu.Lock()
	f.list = append(f.list, o)
	f.mu.Unlock()
}

func (f *fanout) Notify(ev models.Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, o := range f.list {
		o.Notify(ev)
	}
}
