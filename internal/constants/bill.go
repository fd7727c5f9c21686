package constants

const (
	PaymentTypeCash  = "cash"
	PaymentTypeCard  = "card"
	PaymentTypeOther = "other"
)
