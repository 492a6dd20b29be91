package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// addIfCachedScript bumps the doctor's version key, then adds a booked slot
// to a day set only when that set is already cached. Adding to a missing key
// would create a partial set that later reads would mistake for the full day.
var addIfCachedScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	return redis.call('SADD', KEYS[1], ARGV[1])
`)

const (
	SlotCacheKeyPrefix = "slots:booked:"

	// SlotVersionKeyPrefix keys a per-doctor counter bumped by every write to
	// that doctor's day sets. Fills WATCH it.
	SlotVersionKeyPrefix = "slots:version:"

	// filledMarker is present in every cached day set so an empty day is
	// distinguishable from a missing key.
	filledMarker = "-"

	slotCacheTimeout = 2 * time.Second
)

// SlotCacheService keeps a Redis projection of booked slots per doctor and
// day. PostgreSQL stays authoritative; every method degrades to the
// database when Redis is unavailable.
type SlotCacheService struct {
	db               *gorm.DB
	redisClient      *redis.Client
	log              *logrus.Logger
	availabilityRepo repository.AvailabilityRepository
	ttl              time.Duration
	loc              *time.Location
	now              func() time.Time
}

func NewSlotCacheService(
	db *gorm.DB,
	redisClient *redis.Client,
	log *logrus.Logger,
	availabilityRepo repository.AvailabilityRepository,
	ttl time.Duration,
	loc *time.Location,
) *SlotCacheService {
	if loc == nil {
		loc = time.UTC
	}
	return &SlotCacheService{
		db:               db,
		redisClient:      redisClient,
		log:              log,
		availabilityRepo: availabilityRepo,
		ttl:              ttl,
		loc:              loc,
		now:              time.Now,
	}
}

func slotCacheKey(doctorID uuid.UUID, date entity.SlotDate) string {
	return fmt.Sprintf("%s%s:%s", SlotCacheKeyPrefix, doctorID, date)
}

func slotVersionKey(doctorID uuid.UUID) string {
	return SlotVersionKeyPrefix + doctorID.String()
}

// BookedSlots returns the occupied slots of days consecutive days starting
// at from. Cached days are served from Redis; if any day is missing the
// whole range is read from the database and written back.
func (s *SlotCacheService) BookedSlots(ctx context.Context, doctorID uuid.UUID, from entity.SlotDate, days int) (*entity.AvailabilityRecord, error) {
	to := from.AddDays(days - 1)
	if s.redisClient == nil {
		return s.availabilityRepo.Load(s.db.WithContext(ctx), doctorID, from, to)
	}

	reservations, complete, err := s.readCached(ctx, doctorID, from, days)
	if err != nil {
		s.log.Warnf("Failed to read slot cache for doctor %s, using database: %+v", doctorID, err)
		return s.availabilityRepo.Load(s.db.WithContext(ctx), doctorID, from, to)
	}
	if complete {
		return entity.NewAvailabilityRecord(doctorID, reservations), nil
	}

	return s.loadAndFill(ctx, doctorID, from, days)
}

// loadAndFill reads the range from the database and writes it back while
// watching the doctor's version key. A booking or cancellation landing after
// the WATCH bumps the key and aborts the write, so a snapshot older than the
// reservation table never reaches Redis.
func (s *SlotCacheService) loadAndFill(ctx context.Context, doctorID uuid.UUID, from entity.SlotDate, days int) (*entity.AvailabilityRecord, error) {
	to := from.AddDays(days - 1)

	var record *entity.AvailabilityRecord
	var loadErr error
	err := s.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		record, loadErr = s.availabilityRepo.Load(s.db.WithContext(ctx), doctorID, from, to)
		if loadErr != nil {
			return loadErr
		}
		return s.fill(ctx, tx, doctorID, from, days, record)
	}, slotVersionKey(doctorID))
	if loadErr != nil {
		return nil, loadErr
	}

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		s.log.Debugf("Slot cache fill for doctor %s skipped: slots changed while loading", doctorID)
	case record == nil:
		s.log.Warnf("Failed to watch slot cache for doctor %s, using database: %+v", doctorID, err)
		return s.availabilityRepo.Load(s.db.WithContext(ctx), doctorID, from, to)
	default:
		s.log.Warnf("Failed to fill slot cache for doctor %s: %+v", doctorID, err)
	}
	return record, nil
}

func (s *SlotCacheService) readCached(ctx context.Context, doctorID uuid.UUID, from entity.SlotDate, days int) ([]entity.SlotReservation, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, slotCacheTimeout)
	defer cancel()

	pipe := s.redisClient.Pipeline()
	cmds := make([]*redis.StringSliceCmd, days)
	for i := 0; i < days; i++ {
		cmds[i] = pipe.SMembers(ctx, slotCacheKey(doctorID, from.AddDays(i)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, err
	}

	var reservations []entity.SlotReservation
	for i, cmd := range cmds {
		members := cmd.Val()
		if len(members) == 0 {
			return nil, false, nil
		}
		date := from.AddDays(i)
		for _, m := range members {
			if m == filledMarker {
				continue
			}
			at, err := entity.ParseSlotTime(m)
			if err != nil {
				return nil, false, fmt.Errorf("corrupt slot cache member %q: %w", m, err)
			}
			reservations = append(reservations, entity.SlotReservation{DoctorID: doctorID, SlotDate: date, SlotTime: at})
		}
	}
	return reservations, true, nil
}

func (s *SlotCacheService) fill(ctx context.Context, tx *redis.Tx, doctorID uuid.UUID, from entity.SlotDate, days int, record *entity.AvailabilityRecord) error {
	ctx, cancel := context.WithTimeout(ctx, slotCacheTimeout)
	defer cancel()

	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := 0; i < days; i++ {
			date := from.AddDays(i)
			key := slotCacheKey(doctorID, date)
			members := []interface{}{filledMarker}
			for _, at := range record.BookedOn(date) {
				members = append(members, at.String())
			}
			pipe.Del(ctx, key)
			pipe.SAdd(ctx, key, members...)
			pipe.Expire(ctx, key, s.calculateTTL(date))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fill slot cache for doctor %s: %w", doctorID, err)
	}
	return nil
}

// MarkBooked records a new reservation in the cached day set, if cached.
func (s *SlotCacheService) MarkBooked(ctx context.Context, doctorID uuid.UUID, date entity.SlotDate, at entity.SlotTime) error {
	if s.redisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, slotCacheTimeout)
	defer cancel()

	keys := []string{slotCacheKey(doctorID, date), slotVersionKey(doctorID)}
	if err := addIfCachedScript.Run(ctx, s.redisClient, keys, at.String()).Err(); err != nil {
		return fmt.Errorf("mark slot %s %s booked: %w", date, at, err)
	}
	s.log.Debugf("Slot cache booked: doctor=%s date=%s time=%s", doctorID, date, at)
	return nil
}

// MarkReleased removes a cancelled reservation from the cached day set.
func (s *SlotCacheService) MarkReleased(ctx context.Context, doctorID uuid.UUID, date entity.SlotDate, at entity.SlotTime) error {
	if s.redisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, slotCacheTimeout)
	defer cancel()

	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, slotVersionKey(doctorID))
		pipe.SRem(ctx, slotCacheKey(doctorID, date), at.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark slot %s %s released: %w", date, at, err)
	}
	s.log.Debugf("Slot cache released: doctor=%s date=%s time=%s", doctorID, date, at)
	return nil
}

// Invalidate drops the cached day set so the next read reloads it.
func (s *SlotCacheService) Invalidate(ctx context.Context, doctorID uuid.UUID, date entity.SlotDate) error {
	if s.redisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, slotCacheTimeout)
	defer cancel()

	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, slotVersionKey(doctorID))
		pipe.Del(ctx, slotCacheKey(doctorID, date))
		return nil
	})
	return err
}

// calculateTTL caps the configured TTL at the end of the cached day.
func (s *SlotCacheService) calculateTTL(date entity.SlotDate) time.Duration {
	untilDayEnd := date.AddDays(1).Time(s.loc).Sub(s.now())
	if untilDayEnd <= 0 {
		return time.Minute
	}
	if s.ttl > 0 && s.ttl < untilDayEnd {
		return s.ttl
	}
	return untilDayEnd
}
