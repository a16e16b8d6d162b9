package model

// Supporter is a donor record.
type Supporter struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Address   string `db:"address"`
	Notes     string `db:"notes"`
	CID       string `db:"cid"`
	Nickname  string `db:"nickname"`
	Country   string `db:"country"`
	Postcode  string `db:"postcode"`
	City      string `db:"city"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`

	// Contacts, filled by single-supporter reads only.
	Emails []SupporterEmail `db:"-"`
	Phones []SupporterPhone `db:"-"`
}

// SupporterEmail is one email address of a supporter.
type SupporterEmail struct {
	ID          int64  `db:"id"`
	SupporterID int64  `db:"supporter_id"`
	Email       string `db:"email"`
	IsPrimary   bool   `db:"is_primary"`
	CreatedAt   string `db:"created_at"`
}

// SupporterPhone is one phone number of a supporter.
type SupporterPhone struct {
	ID          int64  `db:"id"`
	SupporterID int64  `db:"supporter_id"`
	Phone       string `db:"phone"`
	IsPrimary   bool   `db:"is_primary"`
	CreatedAt   string `db:"created_at"`
}

// SupporterInput holds the writable supporter fields.
type SupporterInput struct {
	Name     string
	Address  string
	Notes    string
	CID      string
	Nickname string
	Country  string
	Postcode string
	City     string
}
