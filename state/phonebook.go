package state

import (
	"fmt"
	"slices"

	"github.com/rehiy/goform-simulator/models"
	"github.com/rehiy/goform-simulator/modem"
)

// DefaultGroup 未指定分组时使用
const DefaultGroup = "Common"

// PhonebookInput 新联系人
type PhonebookInput struct {
	Location     modem.Location
	Name         string
	Number       string
	HomeNumber   string
	OfficeNumber string
	Group        string
	Email        string
	Encoding     modem.Encoding // Name 和 Email 的编码
}

// AddPhonebookEntry 添加联系人并更新对应位置的已用数量
func (s *Store) AddPhonebookEntry(in PhonebookInput) (models.PhonebookEntry, error) {
	used := s.usedCounter(in.Location)
	if *used >= s.maxRecords(in.Location) {
		return models.PhonebookEntry{}, ErrPhonebookFull
	}

	group := in.Group
	if group == "" {
		group = DefaultGroup
	}

	s.pbmSeq++
	entry := models.PhonebookEntry{
		ID:       s.pbmSeq,
		Location: in.Location,
		Name:     encodeText(in.Name, in.Encoding),
		Number:   in.Number,
		Anr:      in.HomeNumber,
		Anr1:     in.OfficeNumber,
		Group:    group,
	}
	if in.Email != "" {
		entry.Email = encodeText(in.Email, in.Encoding)
	}

	s.contacts = append(s.contacts, entry)
	*used++

	s.notify(models.EventContactAdded, entry)
	return entry, nil
}

// DeletePhonebookEntries 删除联系人，返回是否有联系人被删除
func (s *Store) DeletePhonebookEntries(ids []int) bool {
	var removed []int
	s.contacts = slices.DeleteFunc(s.contacts, func(e models.PhonebookEntry) bool {
		if !slices.Contains(ids, e.ID) {
			return false
		}
		used := s.usedCounter(e.Location)
		*used = max(0, *used-1)
		removed = append(removed, e.ID)
		return true
	})

	if len(removed) == 0 {
		return false
	}
	s.notify(models.EventContactDeleted, removed)
	return true
}

// replaceContacts 整体替换电话本，按位置重算已用数量
func (s *Store) replaceContacts(list []models.PhonebookEntry) error {
	seen := make(map[int]bool, len(list))
	sim, dev := 0, 0
	for _, e := range list {
		if seen[e.ID] {
			return fmt.Errorf("contact %d: %w", e.ID, ErrDuplicateID)
		}
		seen[e.ID] = true
		if e.Location == modem.LocationSIM {
			sim++
		} else {
			dev++
		}
	}

	s.contacts = slices.Clone(list)
	s.pbmCap.SimUsedRecordNum = sim
	s.pbmCap.DevUsedRecordNum = dev
	for _, e := range list {
		s.pbmSeq = max(s.pbmSeq, e.ID)
	}
	return nil
}

func (s *Store) usedCounter(loc modem.Location) *int {
	if loc == modem.LocationSIM {
		return &s.pbmCap.SimUsedRecordNum
	}
	return &s.pbmCap.DevUsedRecordNum
}

func (s *Store) maxRecords(loc modem.Location) int {
	if loc == modem.LocationSIM {
		return s.pbmCap.SimMaxRecordNum
	}
	return s.pbmCap.DevMaxRecordNum
}
