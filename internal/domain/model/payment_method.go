package model

// PaymentMethod is a closed set of checkout channels. Branching on it is
// done with exhaustive switches; adding a member means visiting every
// switch that the compiler flags via the default ErrUnsupportedMethod arm.
type PaymentMethod string

const (
	MethodEWallet      PaymentMethod = "ewallet"       // DANA QR checkout
	MethodBankTransfer PaymentMethod = "bank_transfer" // manual VA transfer, confirmed by back-office
	MethodCreditCard   PaymentMethod = "credit_card"   // hosted card page redirect
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodEWallet, MethodBankTransfer, MethodCreditCard:
		return true
	}
	return false
}
