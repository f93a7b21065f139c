package entities

// PaymentSession is the opaque handle returned by the payment service for a
// pending payment flow.
type PaymentSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
