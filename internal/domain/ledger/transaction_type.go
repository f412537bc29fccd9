package ledger

// TransactionType classifies a credit movement recorded during a session
type TransactionType string

const (
	TransactionTypeRefuel            TransactionType = "REFUEL"
	TransactionTypePurchaseCargo     TransactionType = "PURCHASE_CARGO"
	TransactionTypeSellCargo         TransactionType = "SELL_CARGO"
	TransactionTypeContractAccepted  TransactionType = "CONTRACT_ACCEPTED"
	TransactionTypeContractFulfilled TransactionType = "CONTRACT_FULFILLED"
)

// income is true for types that bring credits in, false for spending
var income = map[TransactionType]bool{
	TransactionTypeRefuel:            false,
	TransactionTypePurchaseCargo:     false,
	TransactionTypeSellCargo:         true,
	TransactionTypeContractAccepted:  true,
	TransactionTypeContractFulfilled: true,
}

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsIncome() bool {
	return income[t]
}

func (t TransactionType) IsValid() bool {
	_, ok := income[t]
	return ok
}
