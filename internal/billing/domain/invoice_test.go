package domain

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

func TestUsageDelta(t *testing.T) {
	usage, clamped := UsageDelta(1000, 1050)
	if usage != 50 || clamped {
		t.Fatalf("expected usage 50 unclamped, got %v clamped=%v", usage, clamped)
	}

	usage, clamped = UsageDelta(1050, 1000)
	if usage != 0 || !clamped {
		t.Fatalf("expected clamped zero usage, got %v clamped=%v", usage, clamped)
	}

	usage, clamped = UsageDelta(100, 100)
	if usage != 0 || clamped {
		t.Fatalf("expected zero usage unclamped, got %v clamped=%v", usage, clamped)
	}
}

func TestResolveWaterCost_FixedWithPrice(t *testing.T) {
	price := 75.0
	cost, metered := ResolveWaterCost("fixed", &price, 999, DefaultRateTable())
	if metered {
		t.Fatal("fixed pricing must not be metered")
	}
	if cost != 75 {
		t.Fatalf("expected 75, got %v", cost)
	}
}

func TestResolveWaterCost_FixedWithoutPriceUsesDefault(t *testing.T) {
	cost, metered := ResolveWaterCost("fixed", nil, 999, DefaultRateTable())
	if metered {
		t.Fatal("fixed pricing must not be metered")
	}
	if cost != 100 {
		t.Fatalf("expected default 100, got %v", cost)
	}
}

func TestResolveWaterCost_MeteredByDefault(t *testing.T) {
	for _, configType := range []string{"unit", "", "UNIT", "something-else"} {
		cost, metered := ResolveWaterCost(configType, nil, 10, DefaultRateTable())
		if !metered {
			t.Fatalf("config %q: expected metered billing", configType)
		}
		if cost != 180 {
			t.Fatalf("config %q: expected 180, got %v", configType, cost)
		}
	}
}

func TestComposeInvoice_MeteredScenario(t *testing.T) {
	contract := BillableContract{
		ContractID:      "contract-1",
		RoomID:          "room-1",
		UserID:          "user-1",
		RentPrice:       5000,
		WaterConfigType: "unit",
	}
	reading := ReadingPair{
		PrevElectricity:    1000,
		CurrentElectricity: 1050,
		PrevWater:          100,
		CurrentWater:       110,
	}

	invoice, anomalies := ComposeInvoice("inv-1", contract, reading, DefaultRateTable(), testNow)
	if len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", anomalies)
	}
	if invoice.ElectricityCost != 250 {
		t.Fatalf("expected electricity 250.00, got %v", invoice.ElectricityCost)
	}
	if invoice.WaterCost != 180 {
		t.Fatalf("expected water 180.00, got %v", invoice.WaterCost)
	}
	if invoice.Total != 5430 {
		t.Fatalf("expected total 5430.00, got %v", invoice.Total)
	}
	if invoice.Status != InvoiceStatusUnpaid {
		t.Fatalf("expected unpaid status, got %q", invoice.Status)
	}
	if invoice.Type != InvoiceTypeMonthly {
		t.Fatalf("expected monthly type, got %q", invoice.Type)
	}
	if err := invoice.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestComposeInvoice_FixedWaterIgnoresMeter(t *testing.T) {
	contract := BillableContract{
		ContractID:      "contract-1",
		RoomID:          "room-1",
		RentPrice:       3000,
		WaterConfigType: "fixed",
	}
	reading := ReadingPair{PrevWater: 500, CurrentWater: 900}

	invoice, _ := ComposeInvoice("inv-1", contract, reading, DefaultRateTable(), testNow)
	if invoice.WaterCost != 100 {
		t.Fatalf("expected default fixed water 100.00, got %v", invoice.WaterCost)
	}
	if invoice.WaterUnit != 0 {
		t.Fatalf("fixed water must not report usage, got %v", invoice.WaterUnit)
	}
}

func TestComposeInvoice_ClampsNegativeDeltas(t *testing.T) {
	contract := BillableContract{
		ContractID:      "contract-1",
		RoomID:          "room-1",
		RentPrice:       2000,
		WaterConfigType: "unit",
	}
	reading := ReadingPair{
		PrevElectricity:    500,
		CurrentElectricity: 400,
		PrevWater:          80,
		CurrentWater:       60,
	}

	invoice, anomalies := ComposeInvoice("inv-1", contract, reading, DefaultRateTable(), testNow)
	if invoice.ElectricityCost != 0 || invoice.WaterCost != 0 {
		t.Fatalf("expected zero utility costs, got elec=%v water=%v", invoice.ElectricityCost, invoice.WaterCost)
	}
	if invoice.Total != 2000 {
		t.Fatalf("expected rent-only total 2000, got %v", invoice.Total)
	}
	if len(anomalies) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(anomalies))
	}
}

func TestComposeInvoice_DueDateAndPeriod(t *testing.T) {
	invoice, _ := ComposeInvoice("inv-1", BillableContract{ContractID: "c", RoomID: "r"}, ReadingPair{}, DefaultRateTable(), testNow)
	if !invoice.BillDate.Equal(testNow) {
		t.Fatalf("expected bill date %v, got %v", testNow, invoice.BillDate)
	}
	wantDue := testNow.Add(5 * 24 * time.Hour)
	if !invoice.DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %v, got %v", wantDue, invoice.DueDate)
	}
	wantPeriod := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !invoice.BillingPeriod.Equal(wantPeriod) {
		t.Fatalf("expected period %v, got %v", wantPeriod, invoice.BillingPeriod)
	}
}

func TestComposeInvoice_RoundsComponents(t *testing.T) {
	rates := RateTable{ElectricityPerUnit: 3.333, WaterPerUnit: 7.777, DefaultFixedWater: 100}
	contract := BillableContract{ContractID: "c", RoomID: "r", RentPrice: 1234.567, WaterConfigType: "unit"}
	reading := ReadingPair{
		PrevElectricity:    0,
		CurrentElectricity: 3,
		PrevWater:          0,
		CurrentWater:       3,
	}

	invoice, _ := ComposeInvoice("inv-1", contract, reading, rates, testNow)
	if invoice.ElectricityCost != 10 {
		t.Fatalf("expected electricity 10.00 (9.999 rounded), got %v", invoice.ElectricityCost)
	}
	if invoice.WaterCost != 23.33 {
		t.Fatalf("expected water 23.33, got %v", invoice.WaterCost)
	}
	if err := invoice.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if invoice.Total != Round2(invoice.RentCost+invoice.ElectricityCost+invoice.WaterCost) {
		t.Fatalf("total %v is not the rounded component sum", invoice.Total)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to InvoiceStatus
		want     bool
	}{
		{InvoiceStatusUnpaid, InvoiceStatusPending, true},
		{InvoiceStatusUnpaid, InvoiceStatusPaid, true},
		{InvoiceStatusPending, InvoiceStatusPaid, true},
		{InvoiceStatusPending, InvoiceStatusUnpaid, false},
		{InvoiceStatusPaid, InvoiceStatusUnpaid, false},
		{InvoiceStatusPaid, InvoiceStatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
