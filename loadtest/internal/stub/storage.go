package stub

import (
	"sort"
	"sync"
	"time"

	"github.com/sweepdreams/curbside-notifications/internal/domain"
)

// Storage is the in-memory backing of the stub schedule database.
type Storage struct {
	mu            sync.RWMutex
	schedules     map[int64]domain.SweepRow
	regulations   map[int64]domain.ParkingRegulation
	subscriptions map[string]*subscriptionRecord
}

func NewStorage() *Storage {
	s := &Storage{}
	s.Reset()
	return s
}

func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = make(map[int64]domain.SweepRow)
	s.regulations = make(map[int64]domain.ParkingRegulation)
	s.subscriptions = make(map[string]*subscriptionRecord)
}

func (s *Storage) Seed(req *SeedRequest) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range req.Schedules {
		s.schedules[row.BlockSweepID] = row
	}
	for _, reg := range req.Regulations {
		s.regulations[reg.ID] = reg
	}
	return len(req.Schedules), len(req.Regulations)
}

// AllSchedules stands in for the proximity RPC; the stub has no geometry
// index and simply returns everything seeded.
func (s *Storage) AllSchedules() []domain.SweepRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]domain.SweepRow, 0, len(s.schedules))
	for _, row := range s.schedules {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BlockSweepID < rows[j].BlockSweepID })
	return rows
}

func (s *Storage) ScheduleByID(blockSweepID int64) (domain.SweepRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.schedules[blockSweepID]
	return row, ok
}

func (s *Storage) RegulationByID(id int64) (domain.ParkingRegulation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regulations[id]
	return reg, ok
}

// UpsertSubscription keeps last_notified_at across re-subscribes, matching
// the merge-duplicates behavior of the real table.
func (s *Storage) UpsertSubscription(rec *subscriptionRecord) *subscriptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.subscriptions[rec.DeviceToken]; ok {
		rec.LastNotifiedAt = existing.LastNotifiedAt
	}
	s.subscriptions[rec.DeviceToken] = rec
	return rec
}

func (s *Storage) SubscriptionByToken(deviceToken string) (*subscriptionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.subscriptions[deviceToken]
	return rec, ok
}

func (s *Storage) ListSubscriptions() []*subscriptionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]*subscriptionRecord, 0, len(s.subscriptions))
	for _, rec := range s.subscriptions {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].DeviceToken < recs[j].DeviceToken })
	return recs
}

func (s *Storage) MarkNotified(deviceToken string, scheduleBlockSweepID int64, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.subscriptions[deviceToken]
	if !ok || rec.ScheduleBlockSweepID != scheduleBlockSweepID {
		return false
	}
	rec.LastNotifiedAt = &at
	return true
}

func (s *Storage) DeleteSubscription(deviceToken string) (*subscriptionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.subscriptions[deviceToken]
	if ok {
		delete(s.subscriptions, deviceToken)
	}
	return rec, ok
}
