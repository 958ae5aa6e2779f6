package service

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/modem"
	"github.com/rehiy/goform-simulator/sched"
	"github.com/rehiy/goform-simulator/state"
)

// DefaultTick 自动更新的默认间隔
const DefaultTick = 2 * time.Second

const (
	randomSmsChance   = 0.01
	randomSmsHeadroom = 5
)

// Ticker 周期任务调度
type Ticker interface {
	Every(interval time.Duration, name string, fn sched.Task) *sched.Handle
}

// Updater 周期性地扰动设备状态：信号、流量，偶尔收到短信
type Updater struct {
	store    *state.Store
	ticker   Ticker
	rnd      state.Rand
	interval time.Duration
	log      *zap.SugaredLogger

	mu     sync.Mutex
	handle *sched.Handle
}

// NewUpdater 创建自动更新器，interval 不大于 0 时使用 DefaultTick
func NewUpdater(store *state.Store, ticker Ticker, rnd state.Rand, interval time.Duration, log *zap.SugaredLogger) *Updater {
	if interval <= 0 {
		interval = DefaultTick
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Updater{store: store, ticker: ticker, rnd: rnd, interval: interval, log: log}
}

// Start 开始周期更新，已在运行时返回 false
func (u *Updater) Start() bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.handle != nil {
		return false
	}
	u.handle = u.ticker.Every(u.interval, "updater", u.tick)
	u.log.Infof("[updater] started, interval %v", u.interval)
	return true
}

// Stop 停止周期更新，未运行时返回 false
func (u *Updater) Stop() bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.handle == nil {
		return false
	}
	u.handle.Cancel()
	u.handle = nil
	u.log.Infof("[updater] stopped")
	return true
}

// Running 是否在运行
func (u *Updater) Running() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.handle != nil
}

func (u *Updater) tick() error {
	u.store.SetSignal(state.RandRange(u.rnd, 0, 5))

	if u.store.PPPStatus() == modem.PPPConnected {
		t := u.store.Traffic()
		t.RxBytes += state.RandRange(u.rnd, 1000, 50000)
		t.TxBytes += state.RandRange(u.rnd, 500, 20000)
		t.RxThrpt = state.RandRange(u.rnd, 10000, 1500000)
		t.TxThrpt = state.RandRange(u.rnd, 5000, 800000)
		t.Time++
		u.store.SetTraffic(t)
	}

	return u.maybeReceiveSms()
}

// maybeReceiveSms 以小概率模拟联系人发来短信
func (u *Updater) maybeReceiveSms() error {
	contacts := u.store.Phonebook()
	if len(contacts) == 0 || u.rnd.Float64() >= randomSmsChance {
		return nil
	}
	if len(u.store.Messages()) >= u.store.SmsCapacity().NvTotal-randomSmsHeadroom {
		return nil
	}

	sender := contacts[state.RandRange(u.rnd, 0, len(contacts)-1)]
	msg, err := u.store.AddSms(state.SmsInput{
		Number: sender.Number,
		Body:   fmt.Sprintf("This is a new random SMS! #%d", u.store.NextSmsID()),
		Tag:    modem.TagUnread,
	})
	if err != nil {
		return fmt.Errorf("simulated sms from %s: %w", sender.Number, err)
	}

	u.log.Infof("[updater] simulated sms %d from %s", msg.ID, sender.Number)
	return nil
}
