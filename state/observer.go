package state

import (
	"time"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/sched"
)

//go:generate mockgen -source=observer.go -destination=mock_observer_test.go -package=state

// Observer 接收状态变更事件，在逻辑线程上同步调用，不能阻塞
type Observer interface {
	Notify(ev models.Event)
}

// Clock 状态存储依赖的调度能力
type Clock interface {
	Now() time.Time
	After(delay time.Duration, name string, fn sched.Task) *sched.Handle
}

// Rand 随机数来源，测试中可以替换为固定序列
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type nopObserver struct{}

func (nopObserver) Notify(models.Event) {}

// RandRange 返回 [min, max] 区间内的随机整数
func RandRange(r Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min+1)
}
