package domain

import (
	"context"
	"math"
	"time"
)

// Invoice statuses. New invoices start unpaid; a tenant payment
// submission moves them to pending, a manager confirmation to paid.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// InvoiceTypeMonthly marks invoices produced by the monthly billing run.
const InvoiceTypeMonthly = "monthly"

// DueGracePeriod is the time between billing and payment deadline.
const DueGracePeriod = 5 * 24 * time.Hour

// CanTransition reports whether an invoice may move between statuses.
// The only forward path is unpaid -> pending -> paid; a manager may
// also mark an unpaid invoice paid directly.
func CanTransition(from, to InvoiceStatus) bool {
	switch from {
	case InvoiceStatusUnpaid:
		return to == InvoiceStatusPending || to == InvoiceStatusPaid
	case InvoiceStatusPending:
		return to == InvoiceStatusPaid
	default:
		return false
	}
}

// Invoice is one month's bill for a contract.
type Invoice struct {
	ID              string
	ContractID      string
	RoomID          string
	UserID          string
	BillingPeriod   time.Time
	RentCost        float64
	ElectricityCost float64
	WaterCost       float64
	RepairCost      float64
	DepositCost     float64
	Total           float64
	ElectricityUnit float64
	WaterUnit       float64
	Type            string
	Status          InvoiceStatus
	BillDate        time.Time
	DueDate         time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks structural integrity, including the component-sum
// invariant on the total.
func (inv *Invoice) Validate() error {
	if inv.ID == "" {
		return ErrEmptyInvoiceID
	}
	if inv.ContractID == "" {
		return ErrEmptyContractID
	}
	sum := Round2(inv.RentCost + inv.ElectricityCost + inv.WaterCost + inv.RepairCost + inv.DepositCost)
	if math.Abs(sum-inv.Total) >= 0.005 {
		return ErrInvalidTotal
	}
	return nil
}

// Round2 rounds a money amount to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// PeriodOf returns the billing period containing t, the UTC first of
// the month.
func PeriodOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BillableContract is the engine's read model of a contract joined with
// its room. It carries only what the composer needs.
type BillableContract struct {
	ContractID      string
	RoomID          string
	UserID          string
	RentPrice       float64
	WaterConfigType string
	WaterFixedPrice *float64
}

// ReadingPair is the latest meter snapshot for a contract.
type ReadingPair struct {
	PrevWater          float64
	CurrentWater       float64
	PrevElectricity    float64
	CurrentElectricity float64
}

// Anomaly flags a clamped negative meter delta for one utility.
type Anomaly struct {
	ContractID string
	Utility    string
}

// ComposeInvoice assembles a complete invoice from a contract, its
// latest reading and the rate table. Purely computational: the caller
// supplies the id and persists the result. Missing rent bills zero, a
// fixed-water contract ignores the water meter, and negative deltas
// clamp to zero usage and are reported as anomalies.
func ComposeInvoice(id string, contract BillableContract, reading ReadingPair, rates RateTable, now time.Time) (*Invoice, []Anomaly) {
	var anomalies []Anomaly

	elecUsage, elecClamped := UsageDelta(reading.PrevElectricity, reading.CurrentElectricity)
	if elecClamped {
		anomalies = append(anomalies, Anomaly{ContractID: contract.ContractID, Utility: "electricity"})
	}
	elecCost := Round2(UsageCost(elecUsage, rates.ElectricityPerUnit))

	waterUsage, waterClamped := UsageDelta(reading.PrevWater, reading.CurrentWater)
	waterCost, metered := ResolveWaterCost(contract.WaterConfigType, contract.WaterFixedPrice, waterUsage, rates)
	waterCost = Round2(waterCost)
	if !metered {
		waterUsage = 0
	} else if waterClamped {
		anomalies = append(anomalies, Anomaly{ContractID: contract.ContractID, Utility: "water"})
	}

	rentCost := Round2(math.Max(0, contract.RentPrice))
	now = now.UTC()

	invoice := &Invoice{
		ID:              id,
		ContractID:      contract.ContractID,
		RoomID:          contract.RoomID,
		UserID:          contract.UserID,
		BillingPeriod:   PeriodOf(now),
		RentCost:        rentCost,
		ElectricityCost: elecCost,
		WaterCost:       waterCost,
		RepairCost:      0,
		DepositCost:     0,
		Total:           Round2(rentCost + elecCost + waterCost),
		ElectricityUnit: elecUsage,
		WaterUnit:       waterUsage,
		Type:            InvoiceTypeMonthly,
		Status:          InvoiceStatusUnpaid,
		BillDate:        now,
		DueDate:         now.Add(DueGracePeriod),
	}
	return invoice, anomalies
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Get(ctx context.Context, id string) (*Invoice, error)
	ListByContract(ctx context.Context, contractID string) ([]Invoice, error)
	ListByPeriod(ctx context.Context, period time.Time) ([]Invoice, error)
	ExistsForPeriod(ctx context.Context, contractID string, period time.Time) (bool, error)
	Insert(ctx context.Context, invoice *Invoice) error
	SetStatus(ctx context.Context, id string, status InvoiceStatus) error
}
