package models

import (
	"encoding/json"
	"testing"
)

func TestMigrate_V1FillsDefaults(t *testing.T) {
	raw := []byte(`{"balance":"9500","portfolio":[{"asset_id":"bitcoin","amount":"0.1","avg_price":"40000"}]}`)

	state, err := Migrate(1, raw)
	if err != nil {
		t.Fatalf("Migrate(1) error: %v", err)
	}

	if !state.Loan.IsZero() {
		t.Errorf("Loan = %v, want 0", state.Loan)
	}
	if state.LeveragedPositions == nil || len(state.LeveragedPositions) != 0 {
		t.Errorf("LeveragedPositions = %v, want empty slice", state.LeveragedPositions)
	}
	if state.ShortPositions == nil || len(state.ShortPositions) != 0 {
		t.Errorf("ShortPositions = %v, want empty slice", state.ShortPositions)
	}
	if state.Orders == nil || len(state.Orders) != 0 {
		t.Errorf("Orders = %v, want empty slice", state.Orders)
	}
	if state.Skills == nil {
		t.Error("Skills is nil, want empty map")
	}
	if len(state.Portfolio) != 1 || state.Portfolio[0].AssetID != "bitcoin" {
		t.Errorf("Portfolio = %v, want carried over", state.Portfolio)
	}
}

func TestMigrate_CurrentVersionRoundTrip(t *testing.T) {
	ledger := NewLedger()
	ledger.SkillPoints = 5
	ledger.Skills[SkillShortSelling] = true

	raw, err := json.Marshal(ledger)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	state, err := Migrate(SchemaVersion, raw)
	if err != nil {
		t.Fatalf("Migrate(%d) error: %v", SchemaVersion, err)
	}

	if !state.Balance.Equal(StartingBalance) {
		t.Errorf("Balance = %v, want %v", state.Balance, StartingBalance)
	}
	if state.SkillPoints != 5 {
		t.Errorf("SkillPoints = %d, want 5", state.SkillPoints)
	}
	if !state.Skills.Has(SkillShortSelling) {
		t.Error("short selling skill lost in round trip")
	}
}

func TestMigrate_RejectsNewerVersion(t *testing.T) {
	if _, err := Migrate(SchemaVersion+1, []byte(`{}`)); err == nil {
		t.Error("Migrate accepted snapshot from a newer schema")
	}
}

func TestMigrate_RejectsMalformedBody(t *testing.T) {
	if _, err := Migrate(SchemaVersion, []byte(`{not json`)); err == nil {
		t.Error("Migrate accepted malformed body")
	}
}
