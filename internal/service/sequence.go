package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	"github.com/yadgarautos/jobfiles/internal/domain/sequence"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

const (
	peekInitialInterval = 100 * time.Millisecond
	defaultPeekMaxWait  = 3 * time.Second
)

// SequenceService issues invoice numbers from the shared counter
type SequenceService interface {
	// PeekNext returns the last issued number without touching the counter.
	// A counter that was never written reads as 0.
	PeekNext(ctx context.Context) (string, error)
	// CommitNext consumes a number. It is never retried, a lost response leaves a gap.
	CommitNext(ctx context.Context) (string, error)
	// InitCounter creates the counter at value. Existing counters are left alone.
	InitCounter(ctx context.Context, value int64) (bool, error)
	Preview(ctx context.Context) (*dto.SequenceResponse, error)
}

type sequenceService struct {
	ServiceParams
}

func NewSequenceService(params ServiceParams) SequenceService {
	return &sequenceService{ServiceParams: params}
}

func (s *sequenceService) counterName() string {
	if s.Config.Sequence.CounterName == "" {
		return sequence.DefaultCounterName
	}
	return s.Config.Sequence.CounterName
}

func (s *sequenceService) prefix() string {
	if s.Config.Sequence.Prefix == "" {
		return sequence.DefaultPrefix
	}
	return s.Config.Sequence.Prefix
}

func (s *sequenceService) format(seq int64) string {
	return sequence.NewInvoiceNumber(s.prefix(), seq).String()
}

// current reads the counter with bounded retries. Only unavailability is
// retried, a missing counter is a valid answer.
func (s *sequenceService) current(ctx context.Context) (int64, error) {
	maxWait := s.Config.Sequence.PeekMaxElapsed
	if maxWait <= 0 {
		maxWait = defaultPeekMaxWait
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(peekInitialInterval),
		backoff.WithMaxElapsedTime(maxWait),
	), ctx)

	attempt := 0
	value, err := backoff.RetryWithData(func() (int64, error) {
		attempt++
		v, err := s.CounterRepo.Read(ctx, s.counterName())
		if err == nil {
			return v, nil
		}
		if ierr.IsNotFound(err) {
			return 0, nil
		}
		if !ierr.IsStoreUnavailable(err) {
			return 0, backoff.Permanent(err)
		}
		s.Logger.Warnw("counter read failed, retrying",
			"counter", s.counterName(),
			"attempt", attempt,
			"error", err)
		return 0, err
	}, policy)
	if err != nil {
		return 0, unavailable(err, "Invoice number could not be read, please try again")
	}
	return value, nil
}

func (s *sequenceService) PeekNext(ctx context.Context) (string, error) {
	value, err := s.current(ctx)
	if err != nil {
		return "", err
	}
	return s.format(value), nil
}

func (s *sequenceService) CommitNext(ctx context.Context) (string, error) {
	value, err := s.CounterRepo.Increment(ctx, s.counterName(), 1)
	if err != nil {
		s.Logger.Errorw("failed to commit invoice number",
			"counter", s.counterName(),
			"error", err)
		return "", unavailable(err, "Invoice number could not be issued, please try again")
	}

	number := s.format(value)
	s.Logger.Infow("issued invoice number", "invoice_number", number)
	return number, nil
}

func (s *sequenceService) InitCounter(ctx context.Context, value int64) (bool, error) {
	if value < 0 {
		return false, ierr.NewError("counter value must not be negative").
			WithHint("Counter value must be zero or more").
			WithReportableDetails(map[string]any{"value": value}).
			Mark(ierr.ErrValidation)
	}

	created, err := s.CounterRepo.Init(ctx, s.counterName(), value)
	if err != nil {
		return false, unavailable(err, "Invoice counter could not be initialised")
	}

	if created {
		s.Logger.Infow("initialised invoice counter", "counter", s.counterName(), "value", value)
	} else {
		s.Logger.Infow("invoice counter already exists, left unchanged", "counter", s.counterName())
	}
	return created, nil
}

func (s *sequenceService) Preview(ctx context.Context) (*dto.SequenceResponse, error) {
	value, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SequenceResponse{
		Current:      value,
		LastIssued:   s.format(value),
		NextExpected: s.format(value + 1),
	}, nil
}

// unavailable marks a store failure, keeping validation errors as they are
func unavailable(err error, hint string) error {
	if ierr.IsValidation(err) || ierr.IsStoreUnavailable(err) {
		return err
	}
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrStoreUnavailable)
}
