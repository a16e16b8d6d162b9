package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

const dateFormat = "2006-01-02"

// ValidationError describes why a candidate cannot be committed.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidationErrors is the set of problems found with one donation.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// SupporterChecker tests whether a supporter ID exists.
type SupporterChecker interface {
	Exists(id int64) bool
}

func checkDate(date string) *ValidationError {
	if date == "" {
		return &ValidationError{Field: "date", Description: "missing, set it before importing"}
	}
	if _, err := time.Parse(dateFormat, date); err != nil {
		return &ValidationError{Field: "date", Description: fmt.Sprintf("%q is not YYYY-MM-DD", date)}
	}
	return nil
}

// ValidateDonation checks a donation before it is sent to the store.
func ValidateDonation(in model.DonationInput, supporters SupporterChecker) error {
	var errs ValidationErrors

	if verr := checkDate(in.Date); verr != nil {
		errs = append(errs, *verr)
	}
	if in.Amount <= 0 {
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("must be positive, got %d", in.Amount)})
	}
	if !supporters.Exists(in.SupporterID) {
		errs = append(errs, ValidationError{Field: "supporter", Description: fmt.Sprintf("%d does not exist", in.SupporterID)})
	}
	if in.Currency == "" {
		errs = append(errs, ValidationError{Field: "currency", Description: "missing"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
