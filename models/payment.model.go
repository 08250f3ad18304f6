package models

// Payment methods accepted at checkout
const (
	PaymentMethodPayPal     = "paypal"
	PaymentMethodCreditCard = "credit_card"
)

// ValidPaymentMethod reports whether method is accepted at checkout
func ValidPaymentMethod(method string) bool {
	return method == PaymentMethodPayPal || method == PaymentMethodCreditCard
}
