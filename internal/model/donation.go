package model

// DefaultCurrency is used when a donation does not name one.
const DefaultCurrency = "HUF"

// Donation is a recorded donation.
type Donation struct {
	ID            int64  `db:"id"`
	SupporterID   int64  `db:"supporter_id"`
	SupporterName string `db:"supporter_name"` // set by joined queries only
	Amount        int64  `db:"amount"`
	Currency      string `db:"currency"`
	Date          string `db:"donation_date"`
	PaymentMethod string `db:"payment_method"`
	Reference     string `db:"reference"`
	Notes         string `db:"notes"`
	Source        string `db:"source"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

// DonationInput holds the fields for creating a donation.
// Empty optional strings are stored as NULL.
type DonationInput struct {
	SupporterID   int64
	Amount        int64
	Currency      string
	Date          string
	PaymentMethod string
	Reference     string
	Source        string
	Notes         string
}
