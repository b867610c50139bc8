package models

import "testing"

func TestSkillCatalog_FixedSize(t *testing.T) {
	if len(SkillCatalog) != 11 {
		t.Fatalf("catalog has %d skills, want 11", len(SkillCatalog))
	}

	seen := map[SkillID]bool{}
	for _, s := range SkillCatalog {
		if seen[s.ID] {
			t.Errorf("duplicate skill id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Cost <= 0 {
			t.Errorf("skill %q has non-positive cost %d", s.ID, s.Cost)
		}
	}
}

func TestSkillByID(t *testing.T) {
	info := SkillByID(SkillDayTrader)
	if info == nil {
		t.Fatal("SkillByID(day_trader) = nil")
	}
	if info.Cost != 4 {
		t.Errorf("day trader cost = %d, want 4", info.Cost)
	}

	if SkillByID("not_a_skill") != nil {
		t.Error("SkillByID accepted unknown id")
	}
}

func TestSkills_Has(t *testing.T) {
	s := Skills{}
	if s.Has(SkillRiskManager) {
		t.Error("empty skills reported risk manager unlocked")
	}
	s[SkillRiskManager] = true
	if !s.Has(SkillRiskManager) {
		t.Error("unlocked skill not reported")
	}
}
