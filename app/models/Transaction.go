package models

// Transaction kinds written by the bank.
const (
	TxSalary      = "go_salary"
	TxRent        = "rent"
	TxTax         = "tax"
	TxPurchase    = "property_purchase"
	TxImprovement = "improvement"
	TxMortgage    = "mortgage"
	TxUnmortgage  = "unmortgage"
	TxJailFine    = "jail_fine"
	TxAuction     = "auction_settlement"
	TxTrade       = "trade"
	TxLoanIssue   = "loan_issue"
	TxLoanRepay   = "loan_repayment"
	TxChallenge   = "bot_challenge"
	TxCard        = "card"
)

// Transaction is an immutable ledger entry. Empty player id means the bank.
// Rows are only ever inserted.
type Transaction struct {
	Id         string `json:"id"`
	Game_id    string `json:"game_id"`
	FromPlayer string `json:"from_player" pg:",use_zero"`
	ToPlayer   string `json:"to_player" pg:",use_zero"`
	Amount     int    `json:"amount"`
	Kind       string `json:"kind"`
	PropertyId string `json:"property_id" pg:",use_zero"`
	LoanId     string `json:"loan_id" pg:",use_zero"`
	Lap        int    `json:"lap" pg:",use_zero"`
}

type Loan struct {
	Id           string  `json:"id"`
	Game_id      string  `json:"game_id"`
	Player_id    string  `json:"player_id"`
	Principal    int     `json:"principal"`
	InterestRate float64 `json:"interest_rate"`
	OriginalRate float64 `json:"original_rate"`
	Active       bool    `json:"active" pg:",use_zero"`
}
