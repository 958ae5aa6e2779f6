package state

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

// Traffic 实时流量计数
type Traffic struct {
	RxBytes int
	TxBytes int
	RxThrpt int
	TxThrpt int
	Time    int
}

// Store 设备状态的唯一来源。
// 所有方法都应在调度器的逻辑线程上调用，内部不加锁。
type Store struct {
	clock Clock
	rnd   Rand
	obs   Observer
	log   *zap.SugaredLogger

	fields map[string]any

	messages []models.SmsMessage
	smsSeq   int
	contacts []models.PhonebookEntry
	pbmSeq   int

	smsCap      models.SmsCapacity
	pbmCap      models.PhonebookCapacity
	smsPara     models.SmsParameters
	cmdStatus   models.SmsCmdStatus
	ussdData    models.UssdData
	ussdFlag    modem.USSDFlag
	pbmFlag     modem.WriteFlag
	version     *models.VersionInfo
	stations    []models.Station
	stsReceived bool

	signal  int
	traffic Traffic

	ppp *fsm.FSM
}

// New 创建状态存储并载入初始数据
func New(clock Clock, rnd Rand, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Store{
		clock:  clock,
		rnd:    rnd,
		obs:    nopObserver{},
		log:    log,
		fields: map[string]any{},
	}
	s.ppp = newPPPMachine(modem.PPPDisconnected)
	s.seed()
	return s
}

// SetObserver 设置事件接收者，nil 表示丢弃事件
func (s *Store) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.obs = o
}

// Publish 发布一个不由状态变更产生的事件
func (s *Store) Publish(typ string, data any) {
	s.notify(typ, data)
}

func (s *Store) notify(typ string, data any) {
	s.obs.Notify(models.Event{Type: typ, Time: s.clock.Now(), Data: data})
}

// Get 读取字段，返回值是快照
func (s *Store) Get(key string) (any, bool) {
	if b, ok := bindings[key]; ok {
		return b.get(s)
	}
	v, ok := s.fields[key]
	return v, ok
}

// GetMany 批量读取，忽略不存在的字段
func (s *Store) GetMany(keys []string) map[string]any {
	res := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := s.Get(k); ok {
			res[k] = v
		}
	}
	return res
}

// String 以字符串形式读取字段，不存在时返回空串
func (s *Store) String(key string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Set 写入字段。
// 有类型的字段接受对应的 Go 类型或线上的字符串形式，无法转换的值被丢弃。
func (s *Store) Set(key string, v any) error {
	b, ok := bindings[key]
	if !ok {
		s.fields[key] = v
		return nil
	}
	if b.set == nil {
		s.log.Warnf("[state] drop %s: %v", key, ErrDerivedField)
		return fmt.Errorf("%s: %w", key, ErrDerivedField)
	}
	if err := b.set(s, v); err != nil {
		s.log.Warnf("[state] drop %s=%v: %v", key, v, err)
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Messages 短信列表快照
func (s *Store) Messages() []models.SmsMessage {
	return slices.Clone(s.messages)
}

// Phonebook 电话本快照
func (s *Store) Phonebook() []models.PhonebookEntry {
	return slices.Clone(s.contacts)
}

// NextSmsID 下一条短信将获得的编号
func (s *Store) NextSmsID() int {
	return s.smsSeq + 1
}

// UnreadCount 未读短信数量
func (s *Store) UnreadCount() int {
	n := 0
	for _, m := range s.messages {
		if m.Tag == modem.TagUnread {
			n++
		}
	}
	return n
}

func (s *Store) SmsCapacity() models.SmsCapacity             { return s.smsCap }
func (s *Store) PhonebookCapacity() models.PhonebookCapacity { return s.pbmCap }
func (s *Store) SmsParameters() models.SmsParameters         { return s.smsPara }
func (s *Store) SmsCmdStatus() models.SmsCmdStatus           { return s.cmdStatus }
func (s *Store) UssdData() models.UssdData                   { return s.ussdData }
func (s *Store) UssdFlag() modem.USSDFlag                    { return s.ussdFlag }
func (s *Store) PbmWriteFlag() modem.WriteFlag               { return s.pbmFlag }
func (s *Store) Signal() int                                 { return s.signal }
func (s *Store) Traffic() Traffic                            { return s.traffic }
func (s *Store) StatusReceived() bool                        { return s.stsReceived }

// Version 固件版本，未设置时 ok 为 false
func (s *Store) Version() (models.VersionInfo, bool) {
	if s.version == nil {
		return models.VersionInfo{}, false
	}
	return *s.version, true
}

func (s *Store) SetSmsCmdStatus(v models.SmsCmdStatus) { s.cmdStatus = v }
func (s *Store) SetPbmWriteFlag(v modem.WriteFlag)     { s.pbmFlag = v }
func (s *Store) SetSignal(n int)                       { s.signal = n }
func (s *Store) SetTraffic(t Traffic)                  { s.traffic = t }

// SetUssd 更新 USSD 会话状态并通知
func (s *Store) SetUssd(flag modem.USSDFlag, data models.UssdData) {
	s.ussdFlag = flag
	s.ussdData = data
	s.notify(models.EventUssdResponse, map[string]any{
		"ussd_write_flag": flag,
		"ussd_data_info":  data,
	})
}

// SetUssdFlag 只更新 USSD 状态码
func (s *Store) SetUssdFlag(flag modem.USSDFlag) {
	s.ussdFlag = flag
}

// 有类型字段的读写绑定

type binding struct {
	get func(*Store) (any, bool)
	set func(*Store, any) error
}

var bindings = map[string]binding{
	"signalbar":         intField(func(s *Store) *int { return &s.signal }),
	"realtime_rx_bytes": intField(func(s *Store) *int { return &s.traffic.RxBytes }),
	"realtime_tx_bytes": intField(func(s *Store) *int { return &s.traffic.TxBytes }),
	"realtime_rx_thrpt": intField(func(s *Store) *int { return &s.traffic.RxThrpt }),
	"realtime_tx_thrpt": intField(func(s *Store) *int { return &s.traffic.TxThrpt }),
	"realtime_time":     intField(func(s *Store) *int { return &s.traffic.Time }),

	"sms_capacity_info":   objectField(func(s *Store) *models.SmsCapacity { return &s.smsCap }),
	"pbm_capacity_info":   objectField(func(s *Store) *models.PhonebookCapacity { return &s.pbmCap }),
	"sms_parameter_info":  objectField(func(s *Store) *models.SmsParameters { return &s.smsPara }),
	"sms_cmd_status_info": objectField(func(s *Store) *models.SmsCmdStatus { return &s.cmdStatus }),
	"ussd_data_info":      objectField(func(s *Store) *models.UssdData { return &s.ussdData }),
	"ussd_write_flag":     stringField(func(s *Store) *modem.USSDFlag { return &s.ussdFlag }),
	"pbm_write_flag":      stringField(func(s *Store) *modem.WriteFlag { return &s.pbmFlag }),

	"sms_unread_num": {
		get: func(s *Store) (any, bool) { return strconv.Itoa(s.UnreadCount()), true },
	},
	"sms_received_flag": {
		get: func(s *Store) (any, bool) { return flagString(s.UnreadCount() > 0), true },
	},
	"sts_received_flag": {
		get: func(s *Store) (any, bool) { return flagString(s.stsReceived), true },
		set: func(s *Store, v any) error {
			b, err := toFlag(v)
			if err == nil {
				s.stsReceived = b
			}
			return err
		},
	},

	"ppp_status": {
		get: func(s *Store) (any, bool) { return s.PPPStatus(), true },
		set: func(s *Store, v any) error {
			st, err := convertString[modem.PPPStatus](v)
			if err != nil {
				return err
			}
			if !st.Valid() {
				return fmt.Errorf("unknown ppp status %q", st)
			}
			s.forcePPP(st)
			return nil
		},
	},

	"version_info": {
		get: func(s *Store) (any, bool) {
			v, ok := s.Version()
			return v, ok
		},
		set: func(s *Store, v any) error {
			if v == nil {
				s.version = nil
				return nil
			}
			vi, err := convert[models.VersionInfo](v)
			if err == nil {
				s.version = &vi
			}
			return err
		},
	},

	"sms_messages": {
		get: func(s *Store) (any, bool) { return s.Messages(), true },
		set: func(s *Store, v any) error {
			list, err := convert[[]models.SmsMessage](v)
			if err != nil {
				return err
			}
			return s.replaceMessages(list)
		},
	},
	"phonebook_entries": {
		get: func(s *Store) (any, bool) { return s.Phonebook(), true },
		set: func(s *Store, v any) error {
			list, err := convert[[]models.PhonebookEntry](v)
			if err != nil {
				return err
			}
			return s.replaceContacts(list)
		},
	},
	"station_list": {
		get: func(s *Store) (any, bool) { return slices.Clone(s.stations), true },
		set: func(s *Store, v any) error {
			list, err := convert[[]models.Station](v)
			if err == nil {
				s.stations = list
			}
			return err
		},
	},
}

func intField(p func(*Store) *int) binding {
	return binding{
		get: func(s *Store) (any, bool) { return strconv.Itoa(*p(s)), true },
		set: func(s *Store, v any) error {
			n, err := convert[int](v)
			if err == nil {
				*p(s) = n
			}
			return err
		},
	}
}

func objectField[T any](p func(*Store) *T) binding {
	return binding{
		get: func(s *Store) (any, bool) { return *p(s), true },
		set: func(s *Store, v any) error {
			o, err := convert[T](v)
			if err == nil {
				*p(s) = o
			}
			return err
		},
	}
}

func stringField[T ~string](p func(*Store) *T) binding {
	return binding{
		get: func(s *Store) (any, bool) { return *p(s), true },
		set: func(s *Store, v any) error {
			str, err := convertString[T](v)
			if err == nil {
				*p(s) = str
			}
			return err
		},
	}
}

// convert 将任意值转换为 T，字符串按 JSON 文本解析
func convert[T any](v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}

	var out T
	var raw []byte
	switch x := v.(type) {
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		raw = b
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("cannot convert %T to %T: %w", v, out, err)
	}
	return out, nil
}

func convertString[T ~string](v any) (T, error) {
	switch x := v.(type) {
	case T:
		return x, nil
	case string:
		return T(x), nil
	case fmt.Stringer:
		return T(x.String()), nil
	}
	var zero T
	return zero, fmt.Errorf("cannot convert %T to string", v)
}

func toFlag(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case string:
		switch x {
		case "0", "":
			return false, nil
		case "1":
			return true, nil
		}
	}
	return false, fmt.Errorf("invalid flag %v", v)
}

func flagString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
