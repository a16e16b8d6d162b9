package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

// NewSupporterRequest asks the operator for the name of a supporter to be
// created and assigned to a candidate.
type NewSupporterRequest struct {
	TransactionID string
	SuggestedName string
}

// RequestNewSupporter opens a new-supporter request for a candidate. The
// candidate's current assignment is cleared; it stays cleared unless the
// request is resolved.
func (s *Session) RequestNewSupporter(txnID string) (NewSupporterRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginChange(txnID); err != nil {
		return NewSupporterRequest{}, err
	}

	req := NewSupporterRequest{
		TransactionID: txnID,
		SuggestedName: s.candidates[s.indexOf(txnID)].SupporterHint,
	}
	delete(s.assignment, txnID)
	s.pending[txnID] = req
	return req, nil
}

// Pending reports whether a candidate has an open new-supporter request.
func (s *Session) Pending(txnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[txnID]
	return ok
}

// AbandonNewSupporter closes a request without creating anything. The
// candidate is left unassigned.
func (s *Session) AbandonNewSupporter(req NewSupporterRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[req.TransactionID]; !ok {
		return ErrNoPendingRequest
	}
	delete(s.pending, req.TransactionID)
	return nil
}

// ResolveNewSupporter creates a supporter named name (the suggested name when
// name is blank), adds it to the directory and assigns it to the request's
// candidate. On failure the candidate is left unassigned and the request closed.
// When a commit batch began while the supporter was being created, the
// supporter is kept in the directory but not assigned, and the error wraps
// ErrImportInProgress.
func (s *Session) ResolveNewSupporter(ctx context.Context, req NewSupporterRequest, name string, creator SupporterCreator) (model.Supporter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(req.SuggestedName)
	}

	s.mu.Lock()
	if _, ok := s.pending[req.TransactionID]; !ok {
		s.mu.Unlock()
		return model.Supporter{}, ErrNoPendingRequest
	}
	if s.state == StateImporting {
		s.mu.Unlock()
		return model.Supporter{}, ErrImportInProgress
	}
	if name == "" {
		delete(s.pending, req.TransactionID)
		s.mu.Unlock()
		return model.Supporter{}, errors.New("supporter name is required")
	}
	s.mu.Unlock()

	created, err := creator.CreateSupporter(ctx, model.SupporterInput{Name: name})

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[req.TransactionID]; !ok {
		// Abandoned or reassigned while the supporter was being created.
		if err == nil {
			s.directory.Add(created)
		}
		return created, err
	}
	delete(s.pending, req.TransactionID)

	if err != nil {
		s.log.Warn().Err(err).Str("transaction", req.TransactionID).Msg("creating supporter failed")
		return model.Supporter{}, fmt.Errorf("creating supporter %q: %w", name, err)
	}

	s.directory.Add(created)
	if s.state == StateImporting {
		// A commit batch started while the supporter was being created.
		s.log.Warn().Int64("supporter", created.ID).Str("transaction", req.TransactionID).Msg("supporter created during import, row left unassigned")
		return created, fmt.Errorf("supporter #%d %s created but not assigned: %w", created.ID, created.Name, ErrImportInProgress)
	}
	if s.indexOf(req.TransactionID) >= 0 {
		s.assignment[req.TransactionID] = created.ID
	}
	s.log.Info().Int64("supporter", created.ID).Str("transaction", req.TransactionID).Msg("supporter created")
	return created, nil
}
