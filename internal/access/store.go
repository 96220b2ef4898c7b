package access

import "context"

// Store describes the persistence operations the access core needs. The
// backing engine is opaque; implementations map a lookup miss to
// ErrNotFound and leave every other failure wrapped for the caller.
type Store interface {
	Accounts() AccountStore
	Sessions() SessionStore
	Groups() GroupStore
	Members() MemberStore
}

// AccountStore manages account rows.
type AccountStore interface {
	Insert(ctx context.Context, a *Account) error
	Find(ctx context.Context, id string) (*Account, error)
	// FindByEmail matches regardless of activation state; federated
	// login must see inactive password accounts to refuse them.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindActiveByEmail(ctx context.Context, email string) (*Account, error)
	FindActiveByUsername(ctx context.Context, username string) (*Account, error)
	// FindByApplication matches any account whose application list
	// contains the id, active or not.
	FindByApplication(ctx context.Context, application string) (*Account, error)
	// ActivateByCode flips active on the row holding the code and
	// returns the updated account.
	ActivateByCode(ctx context.Context, code string) (*Account, error)
}

// SessionStore manages session rows. Sessions are additive: each
// successful authentication inserts a new row and none expire.
type SessionStore interface {
	Insert(ctx context.Context, s *Session) error
	FindByToken(ctx context.Context, token string) (*Session, error)
}

// GroupStore manages group rows.
type GroupStore interface {
	Insert(ctx context.Context, g *Group) error
	Find(ctx context.Context, id string) (*Group, error)
	List(ctx context.Context) ([]*Group, error)
	// Update overwrites the mutable fields and returns the new value.
	Update(ctx context.Context, g *Group) (*Group, error)
	// Delete removes the row and returns the old value.
	Delete(ctx context.Context, id string) (*Group, error)
}

// MemberStore manages membership rows keyed by (group, account).
type MemberStore interface {
	Insert(ctx context.Context, m *Member) error
	Find(ctx context.Context, groupID, accountID string) (*Member, error)
	// FindByAccount is the single-membership lookup: one account
	// belongs to at most one group.
	FindByAccount(ctx context.Context, accountID string) (*Member, error)
	ListByGroup(ctx context.Context, groupID string) ([]*Member, error)
	UpdateRights(ctx context.Context, groupID, accountID string, rights Rights) (*Member, error)
	Delete(ctx context.Context, groupID, accountID string) (*Member, error)
}
