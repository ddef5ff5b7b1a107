package service

import (
	"context"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// Shuffler randomises slices in place. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// TimetableConfig governs generator behaviour.
type TimetableConfig struct {
	Days          []string
	PeriodsPerDay int
	// StrictConflicts keeps a teacher to at most one period per day. Off by default.
	StrictConflicts bool
}

// TimetableService assigns entries to weekly slots by random pairing.
//
// The default walk pairs shuffled slots with a shuffled, repeated entry pool index by index and only
// rejects a teacher already booked in the very same (day, period), which can never happen. The same
// teacher may therefore land in several periods of one day. That permissive behaviour is kept as the
// default contract; StrictConflicts opts into a per-day check that may leave more slots free.
type TimetableService struct {
	cfg      TimetableConfig
	shuffler Shuffler
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewTimetableService constructs the generator. A nil shuffler uses the process-wide math/rand source.
func NewTimetableService(cfg TimetableConfig, shuffler Shuffler, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if shuffler == nil {
		shuffler = globalShuffler{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PeriodsPerDay <= 0 {
		cfg.PeriodsPerDay = 4
	}
	if len(cfg.Days) == 0 {
		cfg.Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	}
	return &TimetableService{cfg: cfg, shuffler: shuffler, metrics: metrics, logger: logger}
}

// Config returns the generator configuration.
func (s *TimetableService) Config() TimetableConfig {
	return s.cfg
}

type slotKey struct {
	day    string
	period int
}

type bookingKey struct {
	day     string
	period  int
	teacher string
}

// Generate builds a timetable from entries. Empty input returns ErrNoEntries.
func (s *TimetableService) Generate(ctx context.Context, entries []models.Entry) (*models.Timetable, error) {
	if len(entries) == 0 {
		s.metrics.RecordEmptyGeneration()
		return nil, appErrors.ErrNoEntries
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timetable := models.NewTimetable(s.cfg.Days, s.cfg.PeriodsPerDay)

	slots := make([]slotKey, 0, len(s.cfg.Days)*s.cfg.PeriodsPerDay)
	for _, day := range s.cfg.Days {
		for p := 0; p < s.cfg.PeriodsPerDay; p++ {
			slots = append(slots, slotKey{day: day, period: p})
		}
	}
	s.shuffler.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	pool := buildPool(entries, len(slots))
	s.shuffler.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if s.cfg.StrictConflicts {
		assignStrict(timetable, slots, pool)
	} else {
		assignPermissive(timetable, slots, pool)
	}

	free := timetable.FreeSlots()
	s.metrics.RecordGeneration(s.cfg.StrictConflicts, len(entries), free)
	s.logger.Debug("timetable generated",
		zap.Int("entries", len(entries)),
		zap.Int("slots", len(slots)),
		zap.Int("free", free),
		zap.Bool("strict", s.cfg.StrictConflicts),
	)
	return timetable, nil
}

// buildPool repeats entries until the pool holds more items than there are slots.
func buildPool(entries []models.Entry, slotCount int) []models.Entry {
	repeats := slotCount/len(entries) + 1
	pool := make([]models.Entry, 0, repeats*len(entries))
	for i := 0; i < repeats; i++ {
		pool = append(pool, entries...)
	}
	return pool
}

func assignPermissive(timetable *models.Timetable, slots []slotKey, pool []models.Entry) {
	used := make(map[bookingKey]struct{}, len(slots))
	for i, slot := range slots {
		if i >= len(pool) {
			break
		}
		entry := pool[i]
		key := bookingKey{day: slot.day, period: slot.period, teacher: entry.Teacher}
		if _, taken := used[key]; taken {
			continue
		}
		timetable.Assign(slot.day, slot.period, entry)
		used[key] = struct{}{}
	}
}

// assignStrict walks the same pairing but swaps in the next pool entry whose teacher is still free
// that day. Slots with no such entry left stay free.
func assignStrict(timetable *models.Timetable, slots []slotKey, pool []models.Entry) {
	busy := make(map[string]map[string]struct{}, len(timetable.Days))
	for i, slot := range slots {
		if i >= len(pool) {
			break
		}
		teachers := busy[slot.day]
		if teachers == nil {
			teachers = make(map[string]struct{})
			busy[slot.day] = teachers
		}
		pick := -1
		for j := i; j < len(pool); j++ {
			if _, taken := teachers[teacherKey(pool[j].Teacher)]; !taken {
				pick = j
				break
			}
		}
		if pick < 0 {
			continue
		}
		pool[i], pool[pick] = pool[pick], pool[i]
		timetable.Assign(slot.day, slot.period, pool[i])
		teachers[teacherKey(pool[i].Teacher)] = struct{}{}
	}
}

func teacherKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
