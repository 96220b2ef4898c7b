package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"aitio.org/internal/access"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "username", "fullname", "password", "role", "applications", "active",
		"activation_code", "recovery_code", "source", "source_sub", "created_at", "updated_at",
	})
}

func TestFindActiveByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectQuery(`select .* from accounts where email=\$1 and active`).
		WithArgs("a@x.com").
		WillReturnRows(accountRows().AddRow(
			"acc-1", "a@x.com", "alice", "", "digest", "none", []byte(`[]`), true,
			"", "", "", "", now, now,
		))

	account, err := store.Accounts().FindActiveByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindActiveByEmail: %v", err)
	}
	if account.ID != "acc-1" || account.Password != "digest" {
		t.Fatalf("unexpected account %+v", account)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindSessionMiss(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`select .* from sessions where token=\$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Sessions().FindByToken(context.Background(), "nope")
	if !errors.Is(err, access.ErrNotFound) {
		t.Fatalf("expected access.ErrNotFound, got %v", err)
	}
}

func TestMemberRightsRoundTrip(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec(`insert into members`).
		WithArgs("m-1", "g-1", "acc-1", "READ | WRITE | DELETE", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Members().Insert(context.Background(), &access.Member{
		ID: "m-1", GroupID: "g-1", AccountID: "acc-1",
		Rights:    access.FullRights(),
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	mock.ExpectQuery(`select .* from members where group_id=\$1 and account_id=\$2`).
		WithArgs("g-1", "acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "account_id", "rights", "created_at", "updated_at"}).
			AddRow("m-1", "g-1", "acc-1", "READ | WRITE", now, now))

	member, err := store.Members().Find(context.Background(), "g-1", "acc-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !member.Rights.Has(access.RightWrite) || member.Rights.Has(access.RightDelete) {
		t.Fatalf("rights did not round-trip: %v", member.Rights)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteGroupReturnsOldRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectQuery(`delete from groups where id=\$1 returning`).
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "business_code", "address", "domains", "created_at", "updated_at"}).
			AddRow("g-1", "Acme", "1234567-8", "Main St 1", []byte(`["acme.example"]`), now, now))

	group, err := store.Groups().Delete(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if group.Name != "Acme" {
		t.Fatalf("unexpected group %+v", group)
	}
	if len(group.Domains) != 1 || group.Domains[0] != "acme.example" {
		t.Fatalf("domains did not round-trip: %v", group.Domains)
	}
}
