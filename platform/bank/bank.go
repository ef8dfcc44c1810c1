// Package bank moves money. Every movement writes one immutable transaction
// row; failures are surfaced as structured results, never raw panics.
package bank

import (
	"errors"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// Result is the structured outcome of a money movement.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func ok() Result             { return Result{Success: true} }
func fail(msg string) Result { return Result{Success: false, Error: msg} }

type Bank struct {
	Store store.Store
}

func New(st store.Store) *Bank {
	return &Bank{Store: st}
}

func (b *Bank) record(gameID, from, to string, amount int, kind, propertyID, loanID string, lap int) error {
	return b.Store.InsertTransaction(&models.Transaction{
		Id:         uuid.NewV4().String(),
		Game_id:    gameID,
		FromPlayer: from,
		ToPlayer:   to,
		Amount:     amount,
		Kind:       kind,
		PropertyId: propertyID,
		LoanId:     loanID,
		Lap:        lap,
	})
}

// PlayerPaysBank debits the player. Insufficient cash is a named failure,
// not an error; the caller decides whether it triggers asset liquidation.
func (b *Bank) PlayerPaysBank(gameID, playerID string, amount int, kind, propertyID string, lap int) Result {
	player, err := b.Store.GetPlayer(playerID)
	if err != nil {
		return fail("player not found")
	}
	if player.Balance < amount {
		return fail(gameerr.ErrInsufficientFunds.Error())
	}
	player.Balance -= amount
	if err := b.Store.SavePlayer(player); err != nil {
		return fail(err.Error())
	}
	if err := b.record(gameID, playerID, "", amount, kind, propertyID, "", lap); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func (b *Bank) BankPaysPlayer(gameID, playerID string, amount int, kind, propertyID string, lap int) Result {
	player, err := b.Store.GetPlayer(playerID)
	if err != nil {
		return fail("player not found")
	}
	player.Balance += amount
	if err := b.Store.SavePlayer(player); err != nil {
		return fail(err.Error())
	}
	if err := b.record(gameID, "", playerID, amount, kind, propertyID, "", lap); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func (b *Bank) PlayerPaysPlayer(gameID, fromID, toID string, amount int, kind, propertyID string, lap int) Result {
	from, err := b.Store.GetPlayer(fromID)
	if err != nil {
		return fail("payer not found")
	}
	to, err := b.Store.GetPlayer(toID)
	if err != nil {
		return fail("payee not found")
	}
	if from.Balance < amount {
		return fail(gameerr.ErrInsufficientFunds.Error())
	}
	from.Balance -= amount
	to.Balance += amount
	if err := b.Store.SavePlayer(from); err != nil {
		return fail(err.Error())
	}
	if err := b.Store.SavePlayer(to); err != nil {
		return fail(err.Error())
	}
	if err := b.record(gameID, fromID, toID, amount, kind, propertyID, "", lap); err != nil {
		return fail(err.Error())
	}
	return ok()
}

// IsInsufficientFunds reports whether a payment result failed on cash alone.
func IsInsufficientFunds(r Result) bool {
	return !r.Success && r.Error == gameerr.ErrInsufficientFunds.Error()
}

// IssueLoan credits the player and opens an active loan row.
func (b *Bank) IssueLoan(gameID, playerID string, principal int, rate float64, lap int) (*models.Loan, error) {
	if principal <= 0 {
		return nil, gameerr.ErrInvalidState
	}
	loan := &models.Loan{
		Id:           uuid.NewV4().String(),
		Game_id:      gameID,
		Player_id:    playerID,
		Principal:    principal,
		InterestRate: rate,
		OriginalRate: rate,
		Active:       true,
	}
	if err := b.Store.SaveLoan(loan); err != nil {
		return nil, err
	}
	if r := b.BankPaysPlayer(gameID, playerID, principal, models.TxLoanIssue, "", lap); !r.Success {
		return nil, errors.New(r.Error)
	}
	log.WithFields(log.Fields{"game": gameID, "player": playerID, "principal": principal}).Info("loan issued")
	return loan, nil
}

// RepayLoan moves amount from the player to the bank and shrinks the
// principal; the loan closes when fully repaid.
func (b *Bank) RepayLoan(loan *models.Loan, amount, lap int) Result {
	if !loan.Active {
		return fail(gameerr.ErrInvalidState.Error())
	}
	if amount > loan.Principal {
		amount = loan.Principal
	}
	r := b.PlayerPaysBank(loan.Game_id, loan.Player_id, amount, models.TxLoanRepay, "", lap)
	if !r.Success {
		return r
	}
	loan.Principal -= amount
	if loan.Principal <= 0 {
		loan.Principal = 0
		loan.Active = false
	}
	if err := b.Store.SaveLoan(loan); err != nil {
		return fail(err.Error())
	}
	return ok()
}
