package service

import (
	"context"
	"elsofra/internal/clock"
	"elsofra/internal/entities"
	"elsofra/internal/logging"
	"elsofra/internal/metrics"
	"elsofra/internal/utils"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSlotCapacity = 50
	DefaultLeadDays     = 1
)

// DefaultServingSlots are the two dinner services.
var DefaultServingSlots = []string{"19:30", "20:00"}

type OpeningSchedule interface {
	IsOpen(ctx context.Context, date time.Time) (bool, error)
}

// HistoricalLedger is the read-only legacy reservation feed.
type HistoricalLedger interface {
	HasConfirmedRecord(ctx context.Context, roomID string, date time.Time) (bool, error)
	CountConfirmedAtSlot(ctx context.Context, date time.Time, slot string) (int, error)
}

// LiveBookings is the read side of the live booking store.
type LiveBookings interface {
	HasActiveBooking(ctx context.Context, roomID string, date time.Time) (bool, error)
	CountActiveAtSlot(ctx context.Context, date time.Time, slot string) (int, error)
}

// ValidationService evaluates the business rules a reservation must satisfy.
// It holds no state of its own; every call reads the stores again.
type ValidationService struct {
	schedule OpeningSchedule
	existing ExistingBookingChecker
	ledger   HistoricalLedger
	live     LiveBookings
	clock    clock.Clock
	logger   *zap.Logger
	metrics  *metrics.Metrics

	capacity     int
	leadDays     int
	servingSlots []string
}

type ValidationOption func(*ValidationService)

// WithSlotCapacity overrides the number of reservations a slot accepts.
func WithSlotCapacity(n int) ValidationOption {
	return func(s *ValidationService) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func WithLeadDays(n int) ValidationOption {
	return func(s *ValidationService) {
		if n >= 0 {
			s.leadDays = n
		}
	}
}

// WithServingSlots replaces the bookable slots. Entries are normalized to
// HH:MM and unparsable ones are dropped.
func WithServingSlots(slots []string) ValidationOption {
	return func(s *ValidationService) {
		normalized := make([]string, 0, len(slots))
		for _, raw := range slots {
			if slot, err := utils.NormalizeSlot(raw); err == nil {
				normalized = append(normalized, slot)
			}
		}
		if len(normalized) > 0 {
			s.servingSlots = normalized
		}
	}
}

func NewValidationService(schedule OpeningSchedule, ledger HistoricalLedger, live LiveBookings, clk clock.Clock, logger *zap.Logger, m *metrics.Metrics, opts ...ValidationOption) *ValidationService {
	logger = logging.OrNop(logger)
	s := &ValidationService{
		schedule: schedule,
		existing: AnyExistingBooking{
			ledgerEvidence{ledger: ledger, logger: logger, metrics: m},
			liveEvidence{live: live},
		},
		ledger:       ledger,
		live:         live,
		clock:        clk,
		logger:       logger,
		metrics:      m,
		capacity:     DefaultSlotCapacity,
		leadDays:     DefaultLeadDays,
		servingSlots: DefaultServingSlots,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsDayOpen is the jour_ouvert rule.
func (s *ValidationService) IsDayOpen(ctx context.Context, date time.Time) (bool, error) {
	return s.schedule.IsOpen(ctx, date)
}

// IsFarEnoughAhead is the 24h_avance rule, counted in calendar days: tomorrow
// passes, today does not.
func (s *ValidationService) IsFarEnoughAhead(date time.Time) bool {
	today := clock.Today(s.clock)
	days := int(utils.DateOnly(date).Sub(today).Hours() / 24)
	return days >= s.leadDays
}

// IsFirstBookingOfStay is the premiere_reservation rule.
func (s *ValidationService) IsFirstBookingOfStay(ctx context.Context, roomID string, date time.Time) (bool, error) {
	found, err := s.existing.HasExistingBooking(ctx, roomID, date)
	if err != nil {
		return false, err
	}
	return !found, nil
}

// IsSlotAvailable is the heure_disponible rule: confirmed legacy records plus
// active live bookings at the slot must stay below capacity. When the ledger
// cannot be read the slot is reported available.
func (s *ValidationService) IsSlotAvailable(ctx context.Context, date time.Time, slot string) (bool, error) {
	legacy, err := s.ledger.CountConfirmedAtSlot(ctx, date, slot)
	if err != nil {
		s.logger.Warn("legacy ledger unavailable, assuming slot is free",
			zap.String("date", utils.FormatDate(date)),
			zap.String("slot", slot),
			zap.Error(err),
		)
		s.metrics.LedgerFallback(entities.RuleSlotAvailable)
		return true, nil
	}
	live, err := s.live.CountActiveAtSlot(ctx, date, slot)
	if err != nil {
		return false, err
	}
	return legacy+live < s.capacity, nil
}

// AvailableSlots returns the serving slots of date that still have room.
func (s *ValidationService) AvailableSlots(ctx context.Context, date time.Time) ([]string, error) {
	date = utils.DateOnly(date)
	available := []string{}
	for _, slot := range s.servingSlots {
		ok, err := s.IsSlotAvailable(ctx, date, slot)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, slot)
		}
	}
	return available, nil
}

// Evaluate checks every rule for roomID on date. slot may be empty, in which
// case the heure_disponible rule is skipped. Errors from the live store or the
// schedule are returned; legacy ledger errors are not.
func (s *ValidationService) Evaluate(ctx context.Context, roomID string, date time.Time, slot string) (entities.EligibilityResult, error) {
	roomID = utils.NormalizeRoom(roomID)
	date = utils.DateOnly(date)

	var (
		res entities.EligibilityResult
		err error
	)
	if res.Validations.DayOpen, err = s.IsDayOpen(ctx, date); err != nil {
		return entities.EligibilityResult{}, err
	}
	res.Validations.LeadTime = s.IsFarEnoughAhead(date)
	if res.Validations.FirstBooking, err = s.IsFirstBookingOfStay(ctx, roomID, date); err != nil {
		return entities.EligibilityResult{}, err
	}
	if slot != "" {
		if slot, err = utils.NormalizeSlot(slot); err != nil {
			return entities.EligibilityResult{}, err
		}
		ok, err := s.IsSlotAvailable(ctx, date, slot)
		if err != nil {
			return entities.EligibilityResult{}, err
		}
		res.Validations.SlotAvailable = &ok
	}
	if res.AvailableSlots, err = s.AvailableSlots(ctx, date); err != nil {
		return entities.EligibilityResult{}, err
	}

	failed := res.FailedRules()
	res.Overall = len(failed) == 0
	res.Message = composeMessage(failed)

	s.logger.Debug("eligibility evaluated",
		zap.String("room", roomID),
		zap.String("date", utils.FormatDate(date)),
		zap.String("slot", slot),
		zap.Bool("allowed", res.Overall),
		zap.Strings("failed", failed),
	)
	s.metrics.ObserveEligibility(res.Overall, failed)
	return res, nil
}

var ruleMessages = map[string]string{
	entities.RuleDayOpen:       entities.MessageClosed,
	entities.RuleLeadTime:      entities.MessageLeadTime,
	entities.RuleFirstBooking:  entities.MessageAlreadyBooked,
	entities.RuleSlotAvailable: entities.MessageSlotUnavailable,
}

// composeMessage joins one message per failing rule, in checking order.
func composeMessage(failed []string) string {
	if len(failed) == 0 {
		return entities.MessageAllowed
	}
	msgs := make([]string, 0, len(failed))
	for _, rule := range failed {
		msgs = append(msgs, ruleMessages[rule])
	}
	return strings.Join(msgs, "; ")
}
