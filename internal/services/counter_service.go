package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

var (
	// ErrCounterInvalidInput indicates the caller supplied invalid counter parameters.
	ErrCounterInvalidInput = errors.New("counter: invalid input")
	// ErrCounterExhausted indicates the requested counter cannot increment further due to max bounds.
	ErrCounterExhausted = errors.New("counter: exhausted")
)

// MaxSaleNumber is the last sale number that fits the six digit ledger format.
const MaxSaleNumber int64 = 999_999

// CounterServiceDeps bundles collaborators required to construct a counter service instance.
type CounterServiceDeps struct {
	Repository repositories.CounterRepository
}

type counterService struct {
	repo       repositories.CounterRepository
	configMu   sync.Mutex
	configured map[string]counterConfigSignature
}

type counterConfigSignature struct {
	stepSet  bool
	step     int64
	maxSet   bool
	maxValue int64
}

const (
	saleCounterScope    = "sales"
	productCounterScope = "catalog"
	productCounterName  = "products"
)

// NewCounterService constructs a service that manages counter sequences on top of the repository.
func NewCounterService(deps CounterServiceDeps) (CounterService, error) {
	if deps.Repository == nil {
		return nil, errors.New("counter service: repository is required")
	}
	return &counterService{
		repo:       deps.Repository,
		configured: make(map[string]counterConfigSignature),
	}, nil
}

func (s *counterService) Next(ctx context.Context, scope, name string, opts CounterGenerationOptions) (CounterValue, error) {
	counterID, err := counterKey(scope, name)
	if err != nil {
		return CounterValue{}, err
	}

	if err := s.ensureConfiguration(ctx, counterID, opts); err != nil {
		return CounterValue{}, translateCounterError(err)
	}

	value, err := s.repo.Next(ctx, counterID, opts.Step)
	if err != nil {
		return CounterValue{}, translateCounterError(err)
	}
	return CounterValue{Value: value, Formatted: formatCounterValue(value, opts)}, nil
}

// NextSaleNumber returns the next sales ledger number, S-000001 through S-999999.
func (s *counterService) NextSaleNumber(ctx context.Context) (string, error) {
	max := MaxSaleNumber
	result, err := s.Next(ctx, saleCounterScope, "ledger", CounterGenerationOptions{
		Step:      1,
		Prefix:    "S-",
		PadLength: 6,
		MaxValue:  &max,
	})
	if err != nil {
		return "", err
	}
	return result.Formatted, nil
}

// NextProductID returns the next catalog id. Ids start at 1 and never repeat within a run.
func (s *counterService) NextProductID(ctx context.Context) (int64, error) {
	result, err := s.Next(ctx, productCounterScope, productCounterName, CounterGenerationOptions{Step: 1})
	if err != nil {
		return 0, err
	}
	return result.Value, nil
}

// AdvanceProductIDs moves the product counter so the next id issued is above last.
// The counter never moves backwards.
func (s *counterService) AdvanceProductIDs(ctx context.Context, last int64) error {
	if last < 0 {
		return fmt.Errorf("%w: last product id must not be negative", ErrCounterInvalidInput)
	}
	counterID, err := counterKey(productCounterScope, productCounterName)
	if err != nil {
		return err
	}
	if err := s.repo.Configure(ctx, counterID, repositories.CounterConfig{InitialValue: &last}); err != nil {
		return translateCounterError(err)
	}
	return nil
}

func counterKey(scope, name string) (string, error) {
	scope = strings.TrimSpace(scope)
	name = strings.TrimSpace(name)
	if scope == "" {
		return "", fmt.Errorf("%w: scope is required", ErrCounterInvalidInput)
	}
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrCounterInvalidInput)
	}
	return scope + ":" + name, nil
}

func translateCounterError(err error) error {
	var counterErr *repositories.CounterError
	if errors.As(err, &counterErr) {
		switch counterErr.Code {
		case repositories.CounterErrorInvalidInput:
			return fmt.Errorf("%w: %s", ErrCounterInvalidInput, counterErr.Message)
		case repositories.CounterErrorExhausted:
			return fmt.Errorf("%w: %s", ErrCounterExhausted, counterErr.Error())
		}
	}
	return err
}

func (s *counterService) ensureConfiguration(ctx context.Context, counterID string, opts CounterGenerationOptions) error {
	signature := counterConfigSignature{}
	if opts.Step > 0 {
		signature.stepSet = true
		signature.step = opts.Step
	}
	if opts.MaxValue != nil {
		signature.maxSet = true
		signature.maxValue = *opts.MaxValue
	}

	s.configMu.Lock()
	defer s.configMu.Unlock()

	if existing, ok := s.configured[counterID]; ok && existing == signature {
		return nil
	}

	cfg := repositories.CounterConfig{}
	if signature.stepSet {
		cfg.Step = signature.step
	}
	if signature.maxSet {
		cfg.MaxValue = &signature.maxValue
	}

	if signature.stepSet || signature.maxSet {
		if err := s.repo.Configure(ctx, counterID, cfg); err != nil {
			return err
		}
	}
	s.configured[counterID] = signature
	return nil
}

func formatCounterValue(value int64, opts CounterGenerationOptions) string {
	formatted := strconv.FormatInt(value, 10)
	if opts.PadLength > 0 {
		formatted = fmt.Sprintf("%0*d", opts.PadLength, value)
	}
	return opts.Prefix + formatted
}
