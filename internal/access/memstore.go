package access

import (
	"context"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It backs the API in development when
// no database DSN is configured, and the service tests.
type MemStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	sessions map[string]*Session
	groups   map[string]*Group
	members  map[string]*Member
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		accounts: make(map[string]*Account),
		sessions: make(map[string]*Session),
		groups:   make(map[string]*Group),
		members:  make(map[string]*Member),
	}
}

func (m *MemStore) Accounts() AccountStore { return (*memAccounts)(m) }
func (m *MemStore) Sessions() SessionStore { return (*memSessions)(m) }
func (m *MemStore) Groups() GroupStore     { return (*memGroups)(m) }
func (m *MemStore) Members() MemberStore   { return (*memMembers)(m) }

type memAccounts MemStore

func (m *memAccounts) Insert(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *memAccounts) Find(_ context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	return m.findAccount(func(a *Account) bool { return strings.EqualFold(a.Email, email) })
}

func (m *memAccounts) FindActiveByEmail(_ context.Context, email string) (*Account, error) {
	return m.findAccount(func(a *Account) bool { return a.Active && strings.EqualFold(a.Email, email) })
}

func (m *memAccounts) FindActiveByUsername(_ context.Context, username string) (*Account, error) {
	return m.findAccount(func(a *Account) bool { return a.Active && a.Username == username })
}

func (m *memAccounts) FindByApplication(_ context.Context, application string) (*Account, error) {
	return m.findAccount(func(a *Account) bool {
		for _, app := range a.Applications {
			if app == application {
				return true
			}
		}
		return false
	})
}

func (m *memAccounts) ActivateByCode(_ context.Context, code string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ActivationCode != "" && a.ActivationCode == code {
			a.Active = true
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memAccounts) findAccount(match func(*Account) bool) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

type memSessions MemStore

func (m *memSessions) Insert(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.Token] = &cp
	return nil
}

func (m *memSessions) FindByToken(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrNotFound
}

type memGroups MemStore

// cloneGroup copies the row including its domains slice.
func cloneGroup(g *Group) *Group {
	cp := *g
	cp.Domains = append([]string(nil), g.Domains...)
	return &cp
}

func (m *memGroups) Insert(_ context.Context, g *Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.ID] = cloneGroup(g)
	return nil
}

func (m *memGroups) Find(_ context.Context, id string) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[id]; ok {
		return cloneGroup(g), nil
	}
	return nil, ErrNotFound
}

func (m *memGroups) List(_ context.Context) ([]*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, cloneGroup(g))
	}
	return out, nil
}

func (m *memGroups) Update(_ context.Context, g *Group) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.groups[g.ID]
	if !ok {
		return nil, ErrNotFound
	}
	existing.Name = g.Name
	existing.BusinessCode = g.BusinessCode
	existing.Address = g.Address
	existing.Domains = append([]string(nil), g.Domains...)
	existing.UpdatedAt = g.UpdatedAt
	return cloneGroup(existing), nil
}

func (m *memGroups) Delete(_ context.Context, id string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.groups, id)
	return cloneGroup(g), nil
}

type memMembers MemStore

func memberKey(groupID, accountID string) string { return groupID + "/" + accountID }

// cloneMember copies the row including its rights map, so callers never
// share mutable state with the store.
func cloneMember(mem *Member) *Member {
	cp := *mem
	cp.Rights = mem.Rights.Clone()
	return &cp
}

func (m *memMembers) Insert(_ context.Context, mem *Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[memberKey(mem.GroupID, mem.AccountID)] = cloneMember(mem)
	return nil
}

func (m *memMembers) Find(_ context.Context, groupID, accountID string) (*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mem, ok := m.members[memberKey(groupID, accountID)]; ok {
		return cloneMember(mem), nil
	}
	return nil, ErrNotFound
}

func (m *memMembers) FindByAccount(_ context.Context, accountID string) (*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mem := range m.members {
		if mem.AccountID == accountID {
			return cloneMember(mem), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memMembers) ListByGroup(_ context.Context, groupID string) ([]*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Member
	for _, mem := range m.members {
		if mem.GroupID == groupID {
			out = append(out, cloneMember(mem))
		}
	}
	return out, nil
}

func (m *memMembers) UpdateRights(_ context.Context, groupID, accountID string, rights Rights) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberKey(groupID, accountID)]
	if !ok {
		return nil, ErrNotFound
	}
	mem.Rights = rights.Clone()
	return cloneMember(mem), nil
}

func (m *memMembers) Delete(_ context.Context, groupID, accountID string) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberKey(groupID, accountID)]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.members, memberKey(groupID, accountID))
	return cloneMember(mem), nil
}
