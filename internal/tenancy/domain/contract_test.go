package tenancy

import "testing"

func TestNormalizeContractStatus_LegacyCasings(t *testing.T) {
	cases := map[string]ContractStatus{
		"active":     ContractStatusActive,
		"Active":     ContractStatusActive,
		"ACTIVE":     ContractStatusActive,
		"complete":   ContractStatusComplete,
		"Complete":   ContractStatusComplete,
		"incomplete": ContractStatusIncomplete,
		"terminated": ContractStatusTerminated,
		" active ":   ContractStatusActive,
	}
	for input, want := range cases {
		got, ok := NormalizeContractStatus(input)
		if !ok {
			t.Fatalf("normalize %q: unexpectedly invalid", input)
		}
		if got != want {
			t.Fatalf("normalize %q: got=%s want=%s", input, got, want)
		}
	}
}

func TestNormalizeContractStatus_Unknown(t *testing.T) {
	for _, input := range []string{"", "pending", "done"} {
		if _, ok := NormalizeContractStatus(input); ok {
			t.Fatalf("normalize %q: expected invalid", input)
		}
	}
}

func TestContractStatus_Billable(t *testing.T) {
	if !ContractStatusActive.Billable() {
		t.Fatalf("active should be billable")
	}
	if !ContractStatusComplete.Billable() {
		t.Fatalf("complete should be billable")
	}
	if ContractStatusIncomplete.Billable() {
		t.Fatalf("incomplete should not be billable")
	}
	if ContractStatusTerminated.Billable() {
		t.Fatalf("terminated should not be billable")
	}
}

func TestContractValidate(t *testing.T) {
	price := 75.0
	contract := Contract{
		ID:              "contract-1",
		RoomID:          "room-1",
		UserID:          "user-1",
		Status:          ContractStatusActive,
		WaterConfigType: WaterConfigFixed,
		WaterFixedPrice: &price,
	}
	if err := contract.Validate(); err != nil {
		t.Fatalf("valid contract rejected: %v", err)
	}

	contract.WaterConfigType = "per-drop"
	if err := contract.Validate(); err != ErrInvalidWaterConfig {
		t.Fatalf("expected ErrInvalidWaterConfig, got %v", err)
	}

	contract.WaterConfigType = WaterConfigUnit
	negative := -1.0
	contract.WaterFixedPrice = &negative
	if err := contract.Validate(); err != ErrNegativeValue {
		t.Fatalf("expected ErrNegativeValue, got %v", err)
	}
}
