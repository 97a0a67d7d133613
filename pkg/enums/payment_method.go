package enums

import "fmt"

// PaymentMethod identifies how an order was settled.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "Cash"
	PaymentMethodCard     PaymentMethod = "Card"
	PaymentMethodTransfer PaymentMethod = "Transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodTransfer,
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	for _, valid := range validPaymentMethods {
		if m == valid {
			return true
		}
	}
	return false
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, valid := range validPaymentMethods {
		if string(valid) == value {
			return valid, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
