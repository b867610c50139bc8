package engine

import (
	"tradequest/models"
	"tradequest/observability"
)

// CanUnlockSkill is the pure predicate the UI uses to gray out locked options.
func (e *Engine) CanUnlockSkill(id models.SkillID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canUnlockLocked(id)
}

func (e *Engine) canUnlockLocked(id models.SkillID) bool {
	info := models.SkillByID(id)
	if info == nil {
		return false
	}
	if e.state.Skills.Has(id) {
		return false
	}
	return e.state.SkillPoints >= info.Cost
}

// UnlockSkill flips the capability flag and deducts its cost atomically.
func (e *Engine) UnlockSkill(id models.SkillID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canUnlockLocked(id) {
		return false
	}

	info := models.SkillByID(id)
	e.state.Skills[id] = true
	e.state.SkillPoints -= info.Cost
	observability.Info("skill unlocked", "user", e.username, "skill", string(id), "cost", info.Cost)
	observability.GetMetrics().RecordSkillUnlocked(string(id))
	e.requestSync()
	return true
}

// GrantSkillPoints awards progression currency, e.g. for completed lessons.
func (e *Engine) GrantSkillPoints(points int) {
	if points <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.SkillPoints += points
	e.requestSync()
}
