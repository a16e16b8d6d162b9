package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

const supporterColumns = `id,
	name,
	COALESCE(address, '') AS address,
	COALESCE(notes, '') AS notes,
	COALESCE(cid, '') AS cid,
	COALESCE(nickname, '') AS nickname,
	COALESCE(country, '') AS country,
	COALESCE(postcode, '') AS postcode,
	COALESCE(city, '') AS city,
	created_at,
	updated_at`

// CreateSupporter inserts a supporter and returns the stored record.
func (s *Store) CreateSupporter(ctx context.Context, in model.SupporterInput) (model.Supporter, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Supporter{}, errors.New("supporter name is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO supporters (name, address, notes, cid, nickname, country, postcode, city)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, nullable(in.Address), nullable(in.Notes), nullable(in.CID),
		nullable(in.Nickname), nullable(in.Country), nullable(in.Postcode), nullable(in.City),
	)
	if err != nil {
		return model.Supporter{}, fmt.Errorf("inserting supporter: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Supporter{}, fmt.Errorf("reading supporter id: %w", err)
	}
	s.log.Debug().Int64("id", id).Msg("supporter created")
	return s.GetSupporter(ctx, id)
}

// GetSupporter returns a supporter by ID with its emails and phones.
func (s *Store) GetSupporter(ctx context.Context, id int64) (model.Supporter, error) {
	var sup model.Supporter
	err := s.db.GetContext(ctx, &sup, `SELECT `+supporterColumns+` FROM supporters WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Supporter{}, fmt.Errorf("supporter %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Supporter{}, fmt.Errorf("reading supporter %d: %w", id, err)
	}

	if err := s.db.SelectContext(ctx, &sup.Emails,
		`SELECT id, supporter_id, email, is_primary, created_at FROM supporter_emails
		 WHERE supporter_id = ? ORDER BY is_primary DESC, id`, id,
	); err != nil {
		return model.Supporter{}, fmt.Errorf("reading emails of supporter %d: %w", id, err)
	}
	if err := s.db.SelectContext(ctx, &sup.Phones,
		`SELECT id, supporter_id, phone, is_primary, created_at FROM supporter_phones
		 WHERE supporter_id = ? ORDER BY is_primary DESC, id`, id,
	); err != nil {
		return model.Supporter{}, fmt.Errorf("reading phones of supporter %d: %w", id, err)
	}
	return sup, nil
}

// ListSupporters returns all supporters in Hungarian alphabetical order.
// Contacts are not loaded.
func (s *Store) ListSupporters(ctx context.Context) ([]model.Supporter, error) {
	var list []model.Supporter
	if err := s.db.SelectContext(ctx, &list, `SELECT `+supporterColumns+` FROM supporters ORDER BY id`); err != nil {
		return nil, fmt.Errorf("listing supporters: %w", err)
	}

	// SQLite compares bytes, which puts accented initials after Z.
	c := collate.New(language.Hungarian)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].Name, list[j].Name) < 0
	})
	return list, nil
}

// UpdateSupporter overwrites the writable fields of a supporter.
func (s *Store) UpdateSupporter(ctx context.Context, id int64, in model.SupporterInput) (model.Supporter, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Supporter{}, errors.New("supporter name is required")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE supporters
		 SET name = ?, address = ?, notes = ?, cid = ?, nickname = ?, country = ?, postcode = ?, city = ?,
		     updated_at = datetime('now')
		 WHERE id = ?`,
		name, nullable(in.Address), nullable(in.Notes), nullable(in.CID),
		nullable(in.Nickname), nullable(in.Country), nullable(in.Postcode), nullable(in.City), id,
	)
	if err != nil {
		return model.Supporter{}, fmt.Errorf("updating supporter %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Supporter{}, fmt.Errorf("supporter %d: %w", id, ErrNotFound)
	}
	return s.GetSupporter(ctx, id)
}

// DeleteSupporter removes a supporter. It fails while donations reference it.
func (s *Store) DeleteSupporter(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "supporters", "supporter", id)
}

// AddEmail records an email address for a supporter.
func (s *Store) AddEmail(ctx context.Context, supporterID int64, email string, primary bool) (model.SupporterEmail, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.SupporterEmail{}, errors.New("email is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO supporter_emails (supporter_id, email, is_primary) VALUES (?, ?, ?)`,
		supporterID, email, primary,
	)
	if err != nil {
		return model.SupporterEmail{}, fmt.Errorf("inserting email for supporter %d: %w", supporterID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SupporterEmail{}, fmt.Errorf("reading email id: %w", err)
	}

	var e model.SupporterEmail
	if err := s.db.GetContext(ctx, &e,
		`SELECT id, supporter_id, email, is_primary, created_at FROM supporter_emails WHERE id = ?`, id,
	); err != nil {
		return model.SupporterEmail{}, fmt.Errorf("reading email %d: %w", id, err)
	}
	return e, nil
}

// RemoveEmail deletes an email address by its ID.
func (s *Store) RemoveEmail(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "supporter_emails", "email", id)
}

// AddPhone records a phone number for a supporter.
func (s *Store) AddPhone(ctx context.Context, supporterID int64, phone string, primary bool) (model.SupporterPhone, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return model.SupporterPhone{}, errors.New("phone is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO supporter_phones (supporter_id, phone, is_primary) VALUES (?, ?, ?)`,
		supporterID, phone, primary,
	)
	if err != nil {
		return model.SupporterPhone{}, fmt.Errorf("inserting phone for supporter %d: %w", supporterID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SupporterPhone{}, fmt.Errorf("reading phone id: %w", err)
	}

	var p model.SupporterPhone
	if err := s.db.GetContext(ctx, &p,
		`SELECT id, supporter_id, phone, is_primary, created_at FROM supporter_phones WHERE id = ?`, id,
	); err != nil {
		return model.SupporterPhone{}, fmt.Errorf("reading phone %d: %w", id, err)
	}
	return p, nil
}

// RemovePhone deletes a phone number by its ID.
func (s *Store) RemovePhone(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "supporter_phones", "phone", id)
}
