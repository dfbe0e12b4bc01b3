package models

// Balance is derived from the posting log at a given clock.
// OwnAmount counts committed postings only; the available bounds add pending holds:
// MinAvailableAmount assumes every pending debit commits and no pending credit does,
// MaxAvailableAmount assumes the opposite.
type Balance struct {
	AccountID          int64  `json:"id"`
	CurrencyCode       string `json:"currencySymCode"`
	OwnAmount          int64  `json:"ownAmount"`
	MinAvailableAmount int64  `json:"minAvailableAmount"`
	MaxAvailableAmount int64  `json:"maxAvailableAmount"`
	Clock              Clock  `json:"clock"`
}
