package reconcile

import (
	"context"
	"fmt"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

// Imported records a candidate committed as a donation.
type Imported struct {
	TransactionID string
	Reference     string
	DonationID    int64
}

// Failure records a candidate that could not be committed. It stays in the
// session, still selected and assigned, for a retry.
type Failure struct {
	TransactionID string
	Reference     string
	SupporterHint string
	Err           error
}

// Label names the failed row for the operator.
func (f Failure) Label() string {
	if f.SupporterHint != "" {
		return f.SupporterHint
	}
	return f.TransactionID
}

// Message returns a human-readable failure line.
func (f Failure) Message() string {
	return fmt.Sprintf("%s: %v", f.Label(), f.Err)
}

// Report summarizes one commit batch.
type Report struct {
	Succeeded int
	Failed    int
	Imported  []Imported
	Failures  []Failure
}

type commitItem struct {
	txn   model.BankTransaction
	input model.DonationInput
	err   error
}

// Commit creates one donation per selected and assigned candidate, one at a
// time in statement order. Failures are collected in the Report and never stop
// the batch. The only error returned is ErrImportInProgress.
func (s *Session) Commit(ctx context.Context, creator DonationCreator) (Report, error) {
	items, err := s.beginCommit()
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, item := range items {
		donation, err := s.commitOne(ctx, creator, item)

		s.mu.Lock()
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, Failure{
				TransactionID: item.txn.ID,
				Reference:     item.txn.Reference,
				SupporterHint: item.txn.SupporterHint,
				Err:           err,
			})
			s.log.Warn().Err(err).Str("transaction", item.txn.ID).Msg("donation import failed")
		} else {
			report.Succeeded++
			report.Imported = append(report.Imported, Imported{
				TransactionID: item.txn.ID,
				Reference:     item.txn.Reference,
				DonationID:    donation.ID,
			})
			s.remove(item.txn.ID)
			s.log.Debug().Int64("donation", donation.ID).Str("transaction", item.txn.ID).Msg("donation imported")
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.state = StateReviewing
	remaining := len(s.candidates)
	s.mu.Unlock()

	s.log.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("remaining", remaining).
		Msg("import finished")

	return report, nil
}

func (s *Session) beginCommit() ([]commitItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateImporting {
		return nil, ErrImportInProgress
	}

	ready := s.readyLocked()
	items := make([]commitItem, len(ready))
	for i, txn := range ready {
		in := model.DonationInput{
			SupporterID:   s.assignment[txn.ID],
			Amount:        txn.Amount,
			Currency:      s.currency,
			Date:          txn.Date,
			PaymentMethod: s.paymentMethod,
			Reference:     txn.Reference,
			Source:        txn.Source,
			Notes:         txn.Notes,
		}
		items[i] = commitItem{txn: txn, input: in, err: ValidateDonation(in, s.directory)}
	}

	s.state = StateImporting
	return items, nil
}

func (s *Session) commitOne(ctx context.Context, creator DonationCreator, item commitItem) (model.Donation, error) {
	if item.err != nil {
		return model.Donation{}, item.err
	}
	if err := ctx.Err(); err != nil {
		return model.Donation{}, err
	}
	return creator.CreateDonation(ctx, item.input)
}
