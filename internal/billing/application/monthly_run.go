package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	billing "dormitory-cloud/internal/billing/domain"
	"dormitory-cloud/internal/observability/metrics"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock uses wall clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ContractSource lists contracts eligible for monthly billing, joined
// with their room for the rent price.
type ContractSource interface {
	ListBillable(ctx context.Context) ([]billing.BillableContract, error)
}

// ReadingSource supplies the latest meter snapshot per contract, nil
// when the contract has never been read.
type ReadingSource interface {
	Latest(ctx context.Context, contractID string) (*billing.ReadingPair, error)
}

// Failure records one contract the run could not bill.
type Failure struct {
	RoomID     string
	ContractID string
	Err        error
}

// RunResult summarizes one billing run.
type RunResult struct {
	Period           time.Time
	Generated        int
	SkippedNoReading int
	SkippedExisting  int
	Failures         []Failure
}

// MonthlyRunService is the billing run coordinator. Contracts are
// processed strictly sequentially; one bad contract never aborts the
// run.
type MonthlyRunService struct {
	contracts ContractSource
	readings  ReadingSource
	invoices  billing.InvoiceRepository
	rates     billing.RateTable
	clock     Clock
	logger    *log.Logger
}

// NewMonthlyRunService constructs the coordinator.
func NewMonthlyRunService(
	contracts ContractSource,
	readings ReadingSource,
	invoices billing.InvoiceRepository,
	rates billing.RateTable,
	clock Clock,
	logger *log.Logger,
) (*MonthlyRunService, error) {
	if contracts == nil || readings == nil || invoices == nil {
		return nil, errors.New("monthly run: nil dependency")
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MonthlyRunService{
		contracts: contracts,
		readings:  readings,
		invoices:  invoices,
		rates:     rates,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Run executes one billing cycle over all eligible contracts. Listing
// eligible contracts is the only fatal failure; everything after is
// per-contract. An invoice already stored for the contract and period
// is skipped, so reruns within a month are safe.
func (s *MonthlyRunService) Run(ctx context.Context) (*RunResult, error) {
	started := s.clock.Now()

	contracts, err := s.contracts.ListBillable(ctx)
	if err != nil {
		metrics.ObserveBillingRun(metrics.ResultError, time.Since(started))
		return nil, err
	}

	now := s.clock.Now()
	result := &RunResult{Period: billing.PeriodOf(now)}

	for _, contract := range contracts {
		s.processContract(ctx, contract, now, result)
	}

	metrics.ObserveBillingRun(metrics.ResultSuccess, time.Since(started))
	s.logger.Printf("billing run for %s: generated=%d skipped_no_reading=%d skipped_existing=%d failed=%d",
		result.Period.Format("2006-01"), result.Generated, result.SkippedNoReading,
		result.SkippedExisting, len(result.Failures))
	return result, nil
}

func (s *MonthlyRunService) processContract(ctx context.Context, contract billing.BillableContract, now time.Time, result *RunResult) {
	reading, err := s.readings.Latest(ctx, contract.ContractID)
	if err != nil {
		s.recordFailure(result, contract, err)
		return
	}
	if reading == nil {
		s.logger.Printf("billing run: contract %s has no meter reading, skipping", contract.ContractID)
		result.SkippedNoReading++
		metrics.IncBillingContract(metrics.ContractResultSkippedNoRead)
		return
	}

	exists, err := s.invoices.ExistsForPeriod(ctx, contract.ContractID, billing.PeriodOf(now))
	if err != nil {
		s.recordFailure(result, contract, err)
		return
	}
	if exists {
		result.SkippedExisting++
		metrics.IncBillingContract(metrics.ContractResultSkippedExisting)
		return
	}

	invoice, anomalies := billing.ComposeInvoice(uuid.NewString(), contract, *reading, s.rates, now)
	for _, anomaly := range anomalies {
		s.logger.Printf("billing run: contract %s %s meter went backwards, usage clamped to zero",
			anomaly.ContractID, anomaly.Utility)
		metrics.IncMeterAnomaly()
	}

	if err := s.invoices.Insert(ctx, invoice); err != nil {
		s.recordFailure(result, contract, err)
		return
	}
	result.Generated++
	metrics.IncBillingContract(metrics.ContractResultGenerated)
}

func (s *MonthlyRunService) recordFailure(result *RunResult, contract billing.BillableContract, err error) {
	s.logger.Printf("billing run: contract %s (room %s) failed: %v", contract.ContractID, contract.RoomID, err)
	result.Failures = append(result.Failures, Failure{
		RoomID:     contract.RoomID,
		ContractID: contract.ContractID,
		Err:        err,
	})
	metrics.IncBillingContract(metrics.ContractResultFailed)
}
