package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamogatas-dev/tamogatas/internal/model"
	"github.com/tamogatas-dev/tamogatas/internal/supporters"
)

var (
	// ErrUnknownTransaction is returned for ids that are not current candidates.
	ErrUnknownTransaction = errors.New("unknown transaction")
	// ErrImportInProgress is returned for changes attempted while a commit batch runs.
	ErrImportInProgress = errors.New("import in progress")
	// ErrUnknownSupporter is returned when assigning a supporter missing from the directory.
	ErrUnknownSupporter = errors.New("unknown supporter")
	// ErrNoPendingRequest is returned when resolving a new-supporter request that is not open.
	ErrNoPendingRequest = errors.New("no pending new-supporter request")
)

// DefaultPaymentMethod is recorded on imported donations unless overridden.
const DefaultPaymentMethod = "Átutalás"

// ReferenceLookup reports which references are already recorded as donations.
type ReferenceLookup interface {
	ExistingReferences(ctx context.Context, refs []string) ([]string, error)
}

// DonationCreator persists a donation.
type DonationCreator interface {
	CreateDonation(ctx context.Context, in model.DonationInput) (model.Donation, error)
}

// SupporterCreator persists a new supporter.
type SupporterCreator interface {
	CreateSupporter(ctx context.Context, in model.SupporterInput) (model.Supporter, error)
}

// State is the phase of an import session.
type State int

const (
	StateLoaded State = iota
	StateReviewing
	StateImporting
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateReviewing:
		return "reviewing"
	case StateImporting:
		return "importing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session. Empty fields take defaults.
type Options struct {
	Currency      string
	PaymentMethod string
	Logger        *zerolog.Logger
}

// Session holds the reconciliation state of one statement import.
// Every id in selected, assignment, pending and dates refers to a current candidate.
type Session struct {
	mu         sync.Mutex
	id         string
	state      State
	candidates []model.BankTransaction
	selected   map[string]bool
	assignment map[string]int64
	pending    map[string]NewSupporterRequest
	dates      map[string]string // operator-corrected dates
	skipped    int

	directory     *supporters.Directory
	currency      string
	paymentMethod string
	log           zerolog.Logger
}

// Load starts a session from parsed transactions. Candidates whose reference
// is already recorded are excluded and counted as skipped.
func Load(ctx context.Context, parsed []model.BankTransaction, lookup ReferenceLookup, dir *supporters.Directory, opts Options) (*Session, error) {
	s := &Session{
		id:            uuid.NewString(),
		state:         StateLoaded,
		selected:      make(map[string]bool),
		assignment:    make(map[string]int64),
		pending:       make(map[string]NewSupporterRequest),
		dates:         make(map[string]string),
		directory:     dir,
		currency:      opts.Currency,
		paymentMethod: opts.PaymentMethod,
		log:           zerolog.Nop(),
	}
	if s.directory == nil {
		s.directory = supporters.NewDirectory(nil)
	}
	if s.currency == "" {
		s.currency = model.DefaultCurrency
	}
	if s.paymentMethod == "" {
		s.paymentMethod = DefaultPaymentMethod
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("session", s.id).Logger()
	}

	existing, err := existingReferences(ctx, parsed, lookup)
	if err != nil {
		return nil, err
	}

	for _, txn := range parsed {
		if txn.Reference != "" && existing[txn.Reference] {
			s.skipped++
			continue
		}
		s.candidates = append(s.candidates, txn)
	}

	s.log.Info().
		Int("parsed", len(parsed)).
		Int("candidates", len(s.candidates)).
		Int("skipped", s.skipped).
		Msg("statement loaded")

	return s, nil
}

func existingReferences(ctx context.Context, parsed []model.BankTransaction, lookup ReferenceLookup) (map[string]bool, error) {
	seen := make(map[string]bool)
	var refs []string
	for _, txn := range parsed {
		if txn.Reference == "" || seen[txn.Reference] {
			continue
		}
		seen[txn.Reference] = true
		refs = append(refs, txn.Reference)
	}
	if len(refs) == 0 {
		return nil, nil
	}

	found, err := lookup.ExistingReferences(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("looking up existing references: %w", err)
	}

	existing := make(map[string]bool, len(found))
	for _, ref := range found {
		existing[ref] = true
	}
	return existing, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SkippedCount returns how many parsed transactions were already recorded.
func (s *Session) SkippedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Directory returns the supporter directory used for assignments.
func (s *Session) Directory() *supporters.Directory {
	return s.directory
}

// Candidates returns the remaining candidates in statement order, with
// corrected dates applied.
func (s *Session) Candidates() []model.BankTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.BankTransaction, len(s.candidates))
	for i, txn := range s.candidates {
		out[i] = s.effective(txn)
	}
	return out
}

// Candidate returns one candidate by id.
func (s *Session) Candidate(txnID string) (model.BankTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(txnID)
	if i < 0 {
		return model.BankTransaction{}, false
	}
	return s.effective(s.candidates[i]), true
}

// IsSelected reports whether a candidate is marked for import.
func (s *Session) IsSelected(txnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[txnID]
}

// Assignment returns the supporter assigned to a candidate.
func (s *Session) Assignment(txnID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.assignment[txnID]
	return id, ok
}

// ReadyCount returns the number of candidates both selected and assigned.
func (s *Session) ReadyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readyLocked())
}

// CanCommit reports whether Commit would attempt anything.
func (s *Session) CanCommit() bool {
	return s.ReadyCount() > 0
}

// SetSelected marks or unmarks a candidate for import.
func (s *Session) SetSelected(txnID string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(txnID); err != nil {
		return err
	}
	if selected {
		s.selected[txnID] = true
	} else {
		delete(s.selected, txnID)
	}
	return nil
}

// Toggle flips the selection of a candidate.
func (s *Session) Toggle(txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(txnID); err != nil {
		return err
	}
	if s.selected[txnID] {
		delete(s.selected, txnID)
	} else {
		s.selected[txnID] = true
	}
	return nil
}

// SelectAll marks every current candidate for import.
func (s *Session) SelectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(""); err != nil {
		return err
	}
	s.selected = make(map[string]bool, len(s.candidates))
	for _, txn := range s.candidates {
		s.selected[txn.ID] = true
	}
	return nil
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(""); err != nil {
		return err
	}
	s.selected = make(map[string]bool)
	return nil
}

// Assign sets the supporter for a candidate and cancels any open
// new-supporter request for it.
func (s *Session) Assign(txnID string, supporterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(txnID); err != nil {
		return err
	}
	if !s.directory.Exists(supporterID) {
		return fmt.Errorf("supporter %d: %w", supporterID, ErrUnknownSupporter)
	}
	delete(s.pending, txnID)
	s.assignment[txnID] = supporterID
	return nil
}

// Unassign clears the supporter of a candidate.
func (s *Session) Unassign(txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(txnID); err != nil {
		return err
	}
	delete(s.assignment, txnID)
	return nil
}

// SetDate corrects the date of a candidate, e.g. when the statement date was
// unreadable. date must be YYYY-MM-DD.
func (s *Session) SetDate(txnID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(txnID); err != nil {
		return err
	}
	if verr := checkDate(date); verr != nil {
		return *verr
	}
	s.dates[txnID] = date
	return nil
}

// beginChange rejects changes during a commit batch and, when txnID is not
// empty, for ids that are not current candidates. Caller holds s.mu.
func (s *Session) beginChange(txnID string) error {
	if s.state == StateImporting {
		return ErrImportInProgress
	}
	if txnID != "" && s.indexOf(txnID) < 0 {
		return fmt.Errorf("%q: %w", txnID, ErrUnknownTransaction)
	}
	s.state = StateReviewing
	return nil
}

func (s *Session) indexOf(txnID string) int {
	for i, txn := range s.candidates {
		if txn.ID == txnID {
			return i
		}
	}
	return -1
}

func (s *Session) effective(txn model.BankTransaction) model.BankTransaction {
	if d, ok := s.dates[txn.ID]; ok {
		txn.Date = d
	}
	return txn
}

func (s *Session) readyLocked() []model.BankTransaction {
	var ready []model.BankTransaction
	for _, txn := range s.candidates {
		if !s.selected[txn.ID] {
			continue
		}
		if _, ok := s.assignment[txn.ID]; !ok {
			continue
		}
		ready = append(ready, s.effective(txn))
	}
	return ready
}

// remove drops a committed candidate and every piece of state keyed by it.
func (s *Session) remove(txnID string) {
	if i := s.indexOf(txnID); i >= 0 {
		s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
	}
	delete(s.selected, txnID)
	delete(s.assignment, txnID)
	delete(s.pending, txnID)
	delete(s.dates, txnID)
}
