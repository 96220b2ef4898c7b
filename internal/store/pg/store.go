package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"aitio.org/internal/access"
)

// Store implements access.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ access.Store = (*Store)(nil)

// Open connects with pool settings sized for the API process.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle; used by tests.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Accounts() access.AccountStore { return &accountStore{db: s.db} }
func (s *Store) Sessions() access.SessionStore { return &sessionStore{db: s.db} }
func (s *Store) Groups() access.GroupStore     { return &groupStore{db: s.db} }
func (s *Store) Members() access.MemberStore   { return &memberStore{db: s.db} }

// Account store ------------------------------------------------------------

type accountStore struct{ db *sql.DB }

const accountColumns = `id, email, username, fullname, password, role, applications, active,
	activation_code, recovery_code, source, source_sub, created_at, updated_at`

func (s *accountStore) Insert(ctx context.Context, a *access.Account) error {
	apps, err := json.Marshal(a.Applications)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into accounts(id, email, username, fullname, password, role, applications, active,
			activation_code, recovery_code, source, source_sub, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		a.ID, a.Email, a.Username, a.Fullname, a.Password, a.Role, apps, a.Active,
		a.ActivationCode, a.RecoveryCode, a.Source, a.SourceSub, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (s *accountStore) Find(ctx context.Context, id string) (*access.Account, error) {
	return s.findOne(ctx, `select `+accountColumns+` from accounts where id=$1`, id)
}

func (s *accountStore) FindByEmail(ctx context.Context, email string) (*access.Account, error) {
	return s.findOne(ctx, `select `+accountColumns+` from accounts where email=$1`, email)
}

func (s *accountStore) FindActiveByEmail(ctx context.Context, email string) (*access.Account, error) {
	return s.findOne(ctx, `select `+accountColumns+` from accounts where email=$1 and active`, email)
}

func (s *accountStore) FindActiveByUsername(ctx context.Context, username string) (*access.Account, error) {
	return s.findOne(ctx, `select `+accountColumns+` from accounts where username=$1 and active`, username)
}

func (s *accountStore) FindByApplication(ctx context.Context, application string) (*access.Account, error) {
	return s.findOne(ctx,
		`select `+accountColumns+` from accounts where applications @> jsonb_build_array($1::text)`,
		application)
}

func (s *accountStore) ActivateByCode(ctx context.Context, code string) (*access.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		update accounts set active = true, updated_at = now()
		where activation_code = $1
		returning `+accountColumns, code)
	return scanAccount(row)
}

func (s *accountStore) findOne(ctx context.Context, query string, args ...any) (*access.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, query, args...))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*access.Account, error) {
	var (
		a    access.Account
		apps []byte
	)
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.Fullname, &a.Password, &a.Role, &apps, &a.Active,
		&a.ActivationCode, &a.RecoveryCode, &a.Source, &a.SourceSub, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if len(apps) > 0 {
		_ = json.Unmarshal(apps, &a.Applications)
	}
	return &a, nil
}

// Session store ------------------------------------------------------------

type sessionStore struct{ db *sql.DB }

func (s *sessionStore) Insert(ctx context.Context, sess *access.Session) error {
	_, err := s.db.ExecContext(ctx, `
		insert into sessions(id, token, account_id, method, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6)`,
		sess.ID, sess.Token, sess.AccountID, sess.Method, sess.CreatedAt, sess.UpdatedAt,
	)
	return err
}

func (s *sessionStore) FindByToken(ctx context.Context, token string) (*access.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, token, account_id, method, created_at, updated_at
		from sessions where token=$1`, token)
	var sess access.Session
	err := row.Scan(&sess.ID, &sess.Token, &sess.AccountID, &sess.Method, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Group store --------------------------------------------------------------

type groupStore struct{ db *sql.DB }

const groupColumns = `id, name, business_code, address, domains, created_at, updated_at`

func (s *groupStore) Insert(ctx context.Context, g *access.Group) error {
	domains, err := json.Marshal(g.Domains)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into groups(id, name, business_code, address, domains, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6,$7)`,
		g.ID, g.Name, g.BusinessCode, g.Address, domains, g.CreatedAt, g.UpdatedAt,
	)
	return err
}

func (s *groupStore) Find(ctx context.Context, id string) (*access.Group, error) {
	return scanGroup(s.db.QueryRowContext(ctx, `select `+groupColumns+` from groups where id=$1`, id))
}

func (s *groupStore) List(ctx context.Context) ([]*access.Group, error) {
	rows, err := s.db.QueryContext(ctx, `select `+groupColumns+` from groups order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*access.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func (s *groupStore) Update(ctx context.Context, g *access.Group) (*access.Group, error) {
	domains, err := json.Marshal(g.Domains)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		update groups set name=$2, business_code=$3, address=$4, domains=$5, updated_at=$6
		where id=$1
		returning `+groupColumns,
		g.ID, g.Name, g.BusinessCode, g.Address, domains, g.UpdatedAt)
	return scanGroup(row)
}

func (s *groupStore) Delete(ctx context.Context, id string) (*access.Group, error) {
	row := s.db.QueryRowContext(ctx, `delete from groups where id=$1 returning `+groupColumns, id)
	return scanGroup(row)
}

func scanGroup(row rowScanner) (*access.Group, error) {
	var (
		g       access.Group
		domains []byte
	)
	err := row.Scan(&g.ID, &g.Name, &g.BusinessCode, &g.Address, &domains, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if len(domains) > 0 {
		_ = json.Unmarshal(domains, &g.Domains)
	}
	return &g, nil
}

// Member store -------------------------------------------------------------

type memberStore struct{ db *sql.DB }

const memberColumns = `id, group_id, account_id, rights, created_at, updated_at`

func (s *memberStore) Insert(ctx context.Context, m *access.Member) error {
	_, err := s.db.ExecContext(ctx, `
		insert into members(id, group_id, account_id, rights, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6)`,
		m.ID, m.GroupID, m.AccountID, m.Rights.String(), m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (s *memberStore) Find(ctx context.Context, groupID, accountID string) (*access.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+memberColumns+` from members where group_id=$1 and account_id=$2`, groupID, accountID)
	return scanMember(row)
}

func (s *memberStore) FindByAccount(ctx context.Context, accountID string) (*access.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+memberColumns+` from members where account_id=$1`, accountID)
	return scanMember(row)
}

func (s *memberStore) ListByGroup(ctx context.Context, groupID string) ([]*access.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+memberColumns+` from members where group_id=$1 order by created_at asc`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*access.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *memberStore) UpdateRights(ctx context.Context, groupID, accountID string, rights access.Rights) (*access.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		update members set rights=$3, updated_at=now()
		where group_id=$1 and account_id=$2
		returning `+memberColumns,
		groupID, accountID, rights.String())
	return scanMember(row)
}

func (s *memberStore) Delete(ctx context.Context, groupID, accountID string) (*access.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`delete from members where group_id=$1 and account_id=$2 returning `+memberColumns,
		groupID, accountID)
	return scanMember(row)
}

func scanMember(row rowScanner) (*access.Member, error) {
	var (
		m      access.Member
		rights string
	)
	err := row.Scan(&m.ID, &m.GroupID, &m.AccountID, &rights, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	m.Rights = access.ParseRights(rights)
	return &m, nil
}
