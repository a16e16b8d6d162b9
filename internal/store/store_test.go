package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSupporter(t *testing.T, s *Store, name string) model.Supporter {
	t.Helper()
	sup, err := s.CreateSupporter(context.Background(), model.SupporterInput{Name: name})
	require.NoError(t, err)
	return sup
}

func mustDonation(t *testing.T, s *Store, in model.DonationInput) model.Donation {
	t.Helper()
	d, err := s.CreateDonation(context.Background(), in)
	require.NoError(t, err)
	return d
}

func TestOpen_Migrates(t *testing.T) {
	s := openTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.CreateSupporter(ctx, model.SupporterInput{Name: "Kovács Anna"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	list, err := s.ListSupporters(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSupporters_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateSupporter(ctx, model.SupporterInput{
		Name:     "  Nagy Péter ",
		Address:  "Fő utca 1.",
		Nickname: "Peti",
		City:     "Szeged",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Nagy Péter", created.Name)
	assert.Equal(t, "Peti", created.Nickname)
	assert.Equal(t, "Szeged", created.City)
	assert.Empty(t, created.Notes)
	assert.NotEmpty(t, created.CreatedAt)

	mustSupporter(t, s, "Ábel Béla")

	list, err := s.ListSupporters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ábel Béla", list[0].Name)
	assert.Equal(t, "Nagy Péter", list[1].Name)

	updated, err := s.UpdateSupporter(ctx, created.ID, model.SupporterInput{Name: "Nagy Péter Pál", Notes: "VIP"})
	require.NoError(t, err)
	assert.Equal(t, "Nagy Péter Pál", updated.Name)
	assert.Equal(t, "VIP", updated.Notes)
	assert.Empty(t, updated.City)

	require.NoError(t, s.DeleteSupporter(ctx, created.ID))
	_, err = s.GetSupporter(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteSupporter(ctx, created.ID), ErrNotFound)
	_, err = s.UpdateSupporter(ctx, created.ID, model.SupporterInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSupporter_RequiresName(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateSupporter(context.Background(), model.SupporterInput{Name: "  "})
	assert.Error(t, err)
}

func TestDonations_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	sup := mustSupporter(t, s, "Kovács Anna")

	d := mustDonation(t, s, model.DonationInput{
		SupporterID:   sup.ID,
		Amount:        7000,
		Date:          "2025-11-17",
		PaymentMethod: "Átutalás",
		Reference:     "TRX-1",
		Source:        "1111-2222",
	})

	assert.NotZero(t, d.ID)
	assert.Equal(t, sup.ID, d.SupporterID)
	assert.Equal(t, "Kovács Anna", d.SupporterName)
	assert.Equal(t, int64(7000), d.Amount)
	assert.Equal(t, "HUF", d.Currency)
	assert.Equal(t, "2025-11-17", d.Date)
	assert.Equal(t, "TRX-1", d.Reference)
	assert.Empty(t, d.Notes)

	_, err := s.GetDonation(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDonations_Constraints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sup := mustSupporter(t, s, "Kovács Anna")

	_, err := s.CreateDonation(ctx, model.DonationInput{SupporterID: sup.ID, Amount: 0, Date: "2025-01-01"})
	assert.Error(t, err, "amount must be positive")

	_, err = s.CreateDonation(ctx, model.DonationInput{SupporterID: 999, Amount: 10, Date: "2025-01-01"})
	assert.Error(t, err, "supporter must exist")

	mustDonation(t, s, model.DonationInput{SupporterID: sup.ID, Amount: 10, Date: "2025-01-01"})
	assert.Error(t, s.DeleteSupporter(ctx, sup.ID), "supporter with donations cannot be deleted")
}

func TestDonations_Listing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	anna := mustSupporter(t, s, "Kovács Anna")
	peter := mustSupporter(t, s, "Nagy Péter")

	mustDonation(t, s, model.DonationInput{SupporterID: anna.ID, Amount: 100, Date: "2025-01-10"})
	mustDonation(t, s, model.DonationInput{SupporterID: peter.ID, Amount: 200, Date: "2025-02-10"})
	last := mustDonation(t, s, model.DonationInput{SupporterID: anna.ID, Amount: 300, Date: "2025-03-10"})

	all, err := s.ListDonations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)

	ranged, err := s.ListDonationsByDateRange(ctx, "2025-01-10", "2025-02-10")
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, int64(200), ranged[0].Amount)
	assert.Equal(t, int64(100), ranged[1].Amount)

	byAnna, err := s.ListDonationsBySupporter(ctx, anna.ID)
	require.NoError(t, err)
	assert.Len(t, byAnna, 2)

	require.NoError(t, s.DeleteDonation(ctx, last.ID))
	assert.ErrorIs(t, s.DeleteDonation(ctx, last.ID), ErrNotFound)
}

func TestExistingReferences(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sup := mustSupporter(t, s, "Kovács Anna")

	mustDonation(t, s, model.DonationInput{SupporterID: sup.ID, Amount: 1, Date: "2025-01-01", Reference: "B"})
	mustDonation(t, s, model.DonationInput{SupporterID: sup.ID, Amount: 1, Date: "2025-01-02", Reference: "B"})
	mustDonation(t, s, model.DonationInput{SupporterID: sup.ID, Amount: 1, Date: "2025-01-03"})

	found, err := s.ExistingReferences(ctx, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, found)

	found, err = s.ExistingReferences(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.ExistingReferences(ctx, []string{""})
	require.NoError(t, err)
	assert.Empty(t, found, "NULL references never match")
}

func TestListSupporters_HungarianOrder(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"Zoltán Ödön", "Ödön Béla", "Oszkár Éva", "Ábel Anna", "Béla Tamás"} {
		mustSupporter(t, s, name)
	}

	list, err := s.ListSupporters(context.Background())
	require.NoError(t, err)

	var names []string
	for _, sup := range list {
		names = append(names, sup.Name)
	}
	assert.Equal(t, []string{"Ábel Anna", "Béla Tamás", "Oszkár Éva", "Ödön Béla", "Zoltán Ödön"}, names)
}

func TestSupporterContacts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sup := mustSupporter(t, s, "Kovács Anna")

	_, err := s.AddEmail(ctx, sup.ID, "anna@example.hu", false)
	require.NoError(t, err)
	primary, err := s.AddEmail(ctx, sup.ID, " kovacs.anna@example.hu ", true)
	require.NoError(t, err)
	assert.Equal(t, "kovacs.anna@example.hu", primary.Email)
	assert.True(t, primary.IsPrimary)

	phone, err := s.AddPhone(ctx, sup.ID, "+36 30 123 4567", false)
	require.NoError(t, err)
	assert.Equal(t, sup.ID, phone.SupporterID)

	got, err := s.GetSupporter(ctx, sup.ID)
	require.NoError(t, err)
	require.Len(t, got.Emails, 2)
	assert.Equal(t, "kovacs.anna@example.hu", got.Emails[0].Email, "primary first")
	require.Len(t, got.Phones, 1)
	assert.Equal(t, "+36 30 123 4567", got.Phones[0].Phone)

	require.NoError(t, s.RemoveEmail(ctx, primary.ID))
	assert.ErrorIs(t, s.RemoveEmail(ctx, primary.ID), ErrNotFound)
	require.NoError(t, s.RemovePhone(ctx, phone.ID))
	assert.ErrorIs(t, s.RemovePhone(ctx, phone.ID), ErrNotFound)

	got, err = s.GetSupporter(ctx, sup.ID)
	require.NoError(t, err)
	assert.Len(t, got.Emails, 1)
	assert.Empty(t, got.Phones)

	_, err = s.AddEmail(ctx, sup.ID, "  ", false)
	assert.Error(t, err)
	_, err = s.AddPhone(ctx, 999, "+36 1 234 5678", false)
	assert.Error(t, err, "supporter must exist")
}

func TestDeleteSupporter_RemovesContacts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sup := mustSupporter(t, s, "Kovács Anna")
	email, err := s.AddEmail(ctx, sup.ID, "anna@example.hu", true)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSupporter(ctx, sup.ID))
	assert.ErrorIs(t, s.RemoveEmail(ctx, email.ID), ErrNotFound)
}

func TestUpdateDonation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	anna := mustSupporter(t, s, "Kovács Anna")
	peter := mustSupporter(t, s, "Nagy Péter")
	d := mustDonation(t, s, model.DonationInput{SupporterID: anna.ID, Amount: 100, Date: "2025-01-10", Reference: "R1", Notes: "old"})

	updated, err := s.UpdateDonation(ctx, d.ID, model.DonationInput{
		SupporterID: peter.ID,
		Amount:      250,
		Date:        "2025-01-11",
		Reference:   "R1",
	})
	require.NoError(t, err)
	assert.Equal(t, peter.ID, updated.SupporterID)
	assert.Equal(t, "Nagy Péter", updated.SupporterName)
	assert.Equal(t, int64(250), updated.Amount)
	assert.Equal(t, "HUF", updated.Currency)
	assert.Equal(t, "2025-01-11", updated.Date)
	assert.Empty(t, updated.Notes)

	_, err = s.UpdateDonation(ctx, d.ID, model.DonationInput{SupporterID: peter.ID, Amount: 0, Date: "2025-01-11"})
	assert.Error(t, err, "amount must stay positive")

	_, err = s.UpdateDonation(ctx, 999, model.DonationInput{SupporterID: peter.ID, Amount: 1, Date: "2025-01-11"})
	assert.ErrorIs(t, err, ErrNotFound)
}
