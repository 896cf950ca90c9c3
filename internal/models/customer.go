package models

// CustomerInfo carries the checkout form fields. All four fields are
// required; the email only has to look like an email (contain an "@"),
// matching what the order sheet accepts.
type CustomerInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,emailish"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}
