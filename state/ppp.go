package state

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

// 拨号状态机事件
const (
	pppDial        = "dial"
	pppEstablished = "established"
	pppHangup      = "hangup"
	pppReleased    = "released"
)

var pppStates = []string{
	string(modem.PPPDisconnected),
	string(modem.PPPConnecting),
	string(modem.PPPConnected),
	string(modem.PPPDisconnecting),
}

func newPPPMachine(initial modem.PPPStatus) *fsm.FSM {
	// 完成事件不检查来源状态，按到期顺序各自落定
	return fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: pppDial, Src: pppStates, Dst: string(modem.PPPConnecting)},
			{Name: pppEstablished, Src: pppStates, Dst: string(modem.PPPConnected)},
			{Name: pppHangup, Src: pppStates, Dst: string(modem.PPPDisconnecting)},
			{Name: pppReleased, Src: pppStates, Dst: string(modem.PPPDisconnected)},
		},
		fsm.Callbacks{},
	)
}

// PPPStatus 当前拨号状态
func (s *Store) PPPStatus() modem.PPPStatus {
	return modem.PPPStatus(s.ppp.Current())
}

// PPPDial 开始拨号
func (s *Store) PPPDial() {
	s.pppEvent(pppDial)
}

// PPPEstablish 拨号完成，无论中途是否发起过断开
func (s *Store) PPPEstablish() {
	s.pppEvent(pppEstablished)
}

// PPPHangup 开始断开
func (s *Store) PPPHangup() {
	s.pppEvent(pppHangup)
}

// PPPRelease 断开完成
func (s *Store) PPPRelease() {
	s.pppEvent(pppReleased)
}

func (s *Store) pppEvent(event string) {
	from := s.PPPStatus()
	err := s.ppp.Event(context.Background(), event)

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return
	}
	if err != nil {
		s.log.Warnf("[ppp] %s failed in %s: %v", event, from, err)
		return
	}

	s.log.Infof("[ppp] %s -> %s", from, s.PPPStatus())
	s.notify(models.EventPPPStatus, s.PPPStatus())
}

// forcePPP 直接设置状态
func (s *Store) forcePPP(st modem.PPPStatus) {
	if s.PPPStatus() == st {
		return
	}
	s.ppp.SetState(string(st))
	s.notify(models.EventPPPStatus, st)
}
