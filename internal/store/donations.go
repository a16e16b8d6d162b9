package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

const donationColumns = `d.id,
	d.supporter_id,
	d.amount,
	d.currency,
	d.donation_date,
	COALESCE(d.payment_method, '') AS payment_method,
	COALESCE(d.reference, '') AS reference,
	COALESCE(d.notes, '') AS notes,
	COALESCE(d.source, '') AS source,
	d.created_at,
	d.updated_at`

const donationSelect = `SELECT ` + donationColumns + `, s.name AS supporter_name
	FROM donations d
	JOIN supporters s ON d.supporter_id = s.id`

// CreateDonation inserts a donation and returns the stored record.
// Currency defaults to HUF.
func (s *Store) CreateDonation(ctx context.Context, in model.DonationInput) (model.Donation, error) {
	currency := in.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO donations (supporter_id, amount, currency, donation_date, payment_method, reference, notes, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.SupporterID, in.Amount, currency, in.Date,
		nullable(in.PaymentMethod), nullable(in.Reference), nullable(in.Notes), nullable(in.Source),
	)
	if err != nil {
		return model.Donation{}, fmt.Errorf("inserting donation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Donation{}, fmt.Errorf("reading donation id: %w", err)
	}
	s.log.Debug().Int64("id", id).Int64("supporter", in.SupporterID).Msg("donation created")
	return s.GetDonation(ctx, id)
}

// GetDonation returns a donation with its supporter name.
func (s *Store) GetDonation(ctx context.Context, id int64) (model.Donation, error) {
	var d model.Donation
	err := s.db.GetContext(ctx, &d, donationSelect+` WHERE d.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Donation{}, fmt.Errorf("donation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Donation{}, fmt.Errorf("reading donation %d: %w", id, err)
	}
	return d, nil
}

// ListDonations returns all donations, newest first.
func (s *Store) ListDonations(ctx context.Context) ([]model.Donation, error) {
	var list []model.Donation
	if err := s.db.SelectContext(ctx, &list, donationSelect+` ORDER BY d.donation_date DESC, d.id DESC`); err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	return list, nil
}

// ListDonationsByDateRange returns donations dated from..to inclusive, newest first.
func (s *Store) ListDonationsByDateRange(ctx context.Context, from, to string) ([]model.Donation, error) {
	var list []model.Donation
	if err := s.db.SelectContext(ctx, &list,
		donationSelect+` WHERE d.donation_date BETWEEN ? AND ? ORDER BY d.donation_date DESC, d.id DESC`,
		from, to,
	); err != nil {
		return nil, fmt.Errorf("listing donations %s..%s: %w", from, to, err)
	}
	return list, nil
}

// ListDonationsBySupporter returns a supporter's donations, newest first.
func (s *Store) ListDonationsBySupporter(ctx context.Context, supporterID int64) ([]model.Donation, error) {
	var list []model.Donation
	if err := s.db.SelectContext(ctx, &list,
		donationSelect+` WHERE d.supporter_id = ? ORDER BY d.donation_date DESC, d.id DESC`,
		supporterID,
	); err != nil {
		return nil, fmt.Errorf("listing donations of supporter %d: %w", supporterID, err)
	}
	return list, nil
}

// UpdateDonation overwrites the writable fields of a donation. Currency
// defaults to HUF.
func (s *Store) UpdateDonation(ctx context.Context, id int64, in model.DonationInput) (model.Donation, error) {
	currency := in.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE donations
		 SET supporter_id = ?, amount = ?, currency = ?, donation_date = ?, payment_method = ?,
		     reference = ?, notes = ?, source = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		in.SupporterID, in.Amount, currency, in.Date,
		nullable(in.PaymentMethod), nullable(in.Reference), nullable(in.Notes), nullable(in.Source), id,
	)
	if err != nil {
		return model.Donation{}, fmt.Errorf("updating donation %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Donation{}, fmt.Errorf("donation %d: %w", id, ErrNotFound)
	}
	return s.GetDonation(ctx, id)
}

// DeleteDonation removes a donation.
func (s *Store) DeleteDonation(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "donations", "donation", id)
}

// ExistingReferences returns the subset of refs already recorded on a donation.
func (s *Store) ExistingReferences(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT DISTINCT reference FROM donations WHERE reference IN (?)`, refs)
	if err != nil {
		return nil, fmt.Errorf("building reference query: %w", err)
	}

	var found []string
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("looking up references: %w", err)
	}
	return found, nil
}
