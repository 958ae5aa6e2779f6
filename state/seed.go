package state

import (
	"strconv"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

var (
	networkTypes     = []string{"LTE", "WCDMA", "GSM", "HSPA+"}
	networkProviders = []string{"Digitel", "Vodafone", "Orange", "Telefonica", "ZTE_TEST_NET"}
)

// seed 载入开机时的设备状态
func (s *Store) seed() {
	for k, v := range map[string]any{
		"modem_main_state":      "modem_init_complete",
		"pin_status":            "0",
		"loginfo":               modem.LoginInfoOK,
		"admin_Password":        "admin",
		"puknumber":             "10",
		"pinnumber":             "3",
		"language":              "en",
		"simcard_roam":          "0",
		"lan_ipaddr":            "192.168.0.1",
		"new_version_state":     "0",
		"current_upgrade_state": "",
		"is_mandatory":          "0",
		"m_ssid_enable":         "0",
		"SSID1":                 "ZTE_Router_P18X",
		"AuthMode":              "WPA2PSK",
		"HideSSID":              "0",
		"WPAPSK1":               "defaultPassword123",
		"MAX_Access_num":        "10",
		"EncrypType":            "AES",
		"m_SSID":                "ZTE_Router_Guest",
		"m_AuthMode":            "OPEN",
		"m_HideSSID":            "0",
		"m_WPAPSK1":             "",
		"m_MAX_Access_num":      "5",
		"m_EncrypType":          "NONE",
		"RadioOff":              "0",
		"pbm_init_flag":         "0",
		"APN_config0":           "Digitel Internet($)internet.digitel.ve($)manual($)*99#($)none($)($)($)IP($)auto($)($)auto($)($)",
		"APN_config1":           "Movistar Internet($)internet.movistar.ve($)manual($)*99#($)none($)($)($)IP($)auto($)($)auto($)($)",
		"ipv6_APN_config0":      "Digitel IPv6($)ipv6.digitel.ve($)manual($)*99#($)none($)($)($)IPv6($)auto($)($)auto($)($)",
		"apn_mode":              "manual",
		"m_profile_name":        "Digitel Internet",
		"Current_index":         "0",
		"wan_apn":               "internet.digitel.ve",
		"ppp_auth_mode":         "none",
		"ppp_username":          "",
		"ppp_passwd":            "",
		"dns_mode":              "auto",
		"prefer_dns_manual":     "",
		"standby_dns_manual":    "",
		"HardwareVersion":       "P18XMB_A",
		"monthly_rx_bytes":      "10485760",
		"monthly_tx_bytes":      "5242880",
		"monthly_time":          "36000",
		"date_month":            strconv.Itoa(int(s.clock.Now().Month())),

		"data_volume_limit_switch":  "0",
		"data_volume_limit_size":    "10240_1",
		"data_volume_alert_percent": "80",
		"data_volume_limit_unit":    "data",
	} {
		s.fields[k] = v
	}

	s.fields["network_type"] = networkTypes[s.rnd.IntN(len(networkTypes))]
	s.fields["network_provider"] = networkProviders[s.rnd.IntN(len(networkProviders))]
	s.signal = RandRange(s.rnd, 1, 5)

	s.traffic = Traffic{RxBytes: 10240, TxBytes: 5120, Time: 300, RxThrpt: 81920, TxThrpt: 40960}

	s.stations = []models.Station{
		{MacAddr: "00:1A:2B:3C:4D:5E", Hostname: "MyLaptop-ZTE"},
		{MacAddr: "F0:E1:D2:C3:B4:A5", Hostname: "Alex-Phone"},
	}

	s.smsPara = models.SmsParameters{
		SCA:            "+584128000000",
		MemStore:       "nv",
		StatusReport:   modem.StatusReportEnabled,
		ValidityPeriod: "255",
	}
	s.cmdStatus = models.SmsCmdStatus{Cmd: modem.SmsCmdNone, Result: modem.CmdIdle}
	s.ussdFlag = modem.USSDIdle
	s.ussdData = models.UssdData{Action: modem.USSDActionMenu}
	s.pbmFlag = modem.WriteIdle
	s.version = &models.VersionInfo{
		SoftwareVersion:      "WEB_BLERUSMF90V1.0.0B03",
		InnerSoftwareVersion: "P18X_V1.0.1",
	}

	enc := modem.EncodeUCS2
	s.messages = []models.SmsMessage{
		{ID: 1, Number: "+11234567890", Content: enc("Hello world! This is an older read message."), Date: "23,01,01,10,30,00", Tag: modem.TagRead},
		{ID: 2, Number: "+584124773988", Content: enc("Hi! What's up?"), Date: "23,01,25,14,35,51", Tag: modem.TagSent, DraftGroupID: "1"},
		{ID: 3, Number: enc("Equipo Digitel"), Content: enc("Bienvenido a Digitel. Su saldo es Bs. 50.00."), Date: "23,01,26,09,15,00", Tag: modem.TagUnread},
		{ID: 4, Number: "+19876543210", Content: enc("Meeting at 3 PM today?"), Date: "23,01,26,11,00,00", Tag: modem.TagUnread},
		{ID: 5, Number: enc("Genesis D."), Content: enc("Can you call me back?"), Date: "23,01,25,18,20,10", Tag: modem.TagRead},
		{ID: 6, Number: "+584120000001", Content: enc("Your delivery report: Message to +584124773988 successfully delivered."), Date: "23,01,25,14,38,15", Tag: modem.TagDeliveryReport, DraftGroupID: "1"},
	}
	s.smsSeq = 6

	contact := func(id int, loc modem.Location, name, number, group string) models.PhonebookEntry {
		return models.PhonebookEntry{ID: id, Location: loc, Name: enc(name), Number: number, Group: group}
	}
	dev, sim := modem.LocationDevice, modem.LocationSIM
	s.contacts = []models.PhonebookEntry{
		{ID: 1, Location: dev, Name: enc("Alexander Salas"), Number: "+584124773988", Anr: "+584161234567", Group: "Common", Email: enc("alex.salas@example.com")},
		contact(2, dev, "Equipo Digitel", "411", "Common"),
		contact(3, dev, "Genesis D.", "+584249876543", "Colleague"),
		{ID: 4, Location: dev, Name: enc("Jesus Zuleta"), Number: "+584141112233", Group: "Colleague", Email: enc("j.zuleta@work.com")},
		contact(5, dev, "Pedro Molina", "+584125556677", "Colleague"),
		contact(6, dev, "Roberth Hidalgo", "+584268889900", "Colleague"),
		contact(7, dev, "Alex Salas", "+584123216547", "Family"),
		contact(8, dev, "Fatma Youssef", "+201001234567", "Family"),
		contact(9, sim, "Atencion Cliente", "121", "SIM Contacts"),
		contact(10, sim, "Buzon de voz412", "*123", "SIM Contacts"),
		contact(11, sim, "Club Digitel", "700", "SIM Contacts"),
		contact(12, dev, "Belkys Merchan", "+584127654321", "Common"),
		contact(13, dev, "Curso", "+584121122334", "Common"),
		contact(14, sim, "Hicham", "+33612345678", "SIM Contacts"),
		contact(15, dev, "Ramon CANTV", "155", "Common"),
		contact(16, dev, "Uclides Gil", "+584129988776", "Common"),
	}
	s.pbmSeq = 16

	// 计数从初始集合推导
	s.smsCap = models.SmsCapacity{
		NvTotal:          200,
		NvDraftboxTotal:  1,
		SimTotal:         50,
		SimRevTotal:      2,
		SimSendTotal:     1,
		SimDraftboxTotal: 0,
	}
	for _, m := range s.messages {
		switch {
		case m.Tag.Received():
			s.smsCap.NvRevTotal++
		case m.Tag == modem.TagSent:
			s.smsCap.NvSendTotal++
		}
	}

	s.pbmCap = models.PhonebookCapacity{
		DevMaxRecordNum: 250,
		SimMaxRecordNum: 100,
		SimType:         "3G",
		SimMaxNameLen:   24,
		SimMaxNumberLen: 40,
	}
	for _, e := range s.contacts {
		*s.usedCounter(e.Location)++
	}
}
