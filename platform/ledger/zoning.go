package ledger

import (
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/economy"
)

// Cost the bank charges for commissioning an environmental study.
const envStudyFee = 100

// ApprovalResult reports a probabilistic zoning grant. Odds is the chance
// that was rolled against, in whole percent.
type ApprovalResult struct {
	Success bool   `json:"success"`
	Granted bool   `json:"granted"`
	Odds    int    `json:"odds"`
	Reason  string `json:"reason,omitempty"`
}

// approvalOdds derives grant odds from community standing, shifted by the
// economic phase, clamped to 5..95 so neither outcome is ever certain.
func approvalOdds(standing int, phase string) int {
	odds := 20 + standing*6/10 + economy.ApprovalShift(phase)
	if odds < 5 {
		odds = 5
	}
	if odds > 95 {
		odds = 95
	}
	return odds
}

// RequestCommunityApproval rolls for the approval a level-3 development
// needs. Denial costs a point of standing; a grant earns two.
func (l *Ledger) RequestCommunityApproval(playerID, propertyID string, gs *models.GameState) ApprovalResult {
	property, err := l.Store.GetProperty(propertyID)
	if err != nil {
		return ApprovalResult{Reason: "property not found"}
	}
	if property.OwnerId != playerID {
		return ApprovalResult{Reason: "only the owner may request approval"}
	}
	if property.CommunityApproved {
		return ApprovalResult{Reason: "approval already granted"}
	}
	player, err := l.Store.GetPlayer(playerID)
	if err != nil {
		return ApprovalResult{Reason: "player not found"}
	}

	odds := approvalOdds(player.CommunityStanding, gs.EconomicPhase)
	granted := l.Rand.Intn(100) < odds
	if granted {
		property.CommunityApproved = true
		if err := l.Store.SaveProperty(property); err != nil {
			return ApprovalResult{Reason: err.Error()}
		}
		player.CommunityStanding = clampStanding(player.CommunityStanding + 2)
	} else {
		player.CommunityStanding = clampStanding(player.CommunityStanding - 1)
	}
	if err := l.Store.SavePlayer(player); err != nil {
		log.WithError(err).Warn("failed saving community standing")
	}
	return ApprovalResult{Success: true, Granted: granted, Odds: odds}
}

// CommissionEnvironmentalStudy pays for and rolls a study needed for level-4
// development in flood-prone groups. The grant expires after a few laps.
func (l *Ledger) CommissionEnvironmentalStudy(playerID, propertyID string, gs *models.GameState) ApprovalResult {
	property, err := l.Store.GetProperty(propertyID)
	if err != nil {
		return ApprovalResult{Reason: "property not found"}
	}
	if property.OwnerId != playerID {
		return ApprovalResult{Reason: "only the owner may commission a study"}
	}
	if property.EnvStudyGranted && gs.Lap <= property.EnvStudyExpiresLap {
		return ApprovalResult{Reason: "a current study is already on file"}
	}
	player, err := l.Store.GetPlayer(playerID)
	if err != nil {
		return ApprovalResult{Reason: "player not found"}
	}

	if r := l.Bank.PlayerPaysBank(property.Game_id, playerID, envStudyFee, models.TxImprovement, property.Id, gs.Lap); !r.Success {
		return ApprovalResult{Reason: r.Error}
	}

	// Studies pass more easily than approvals; standing still matters.
	odds := approvalOdds(player.CommunityStanding, gs.EconomicPhase) + 15
	if odds > 95 {
		odds = 95
	}
	granted := l.Rand.Intn(100) < odds
	if granted {
		property.EnvStudyGranted = true
		property.EnvStudyExpiresLap = gs.Lap + envStudyValidLaps
		if err := l.Store.SaveProperty(property); err != nil {
			return ApprovalResult{Reason: err.Error()}
		}
	}
	return ApprovalResult{Success: true, Granted: granted, Odds: odds}
}

func clampStanding(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
