package access

import (
	"context"
	"fmt"
)

// AddMember enrolls the account into the group with the given rights.
// An account holds at most one membership, so an account already in any
// group is refused.
func (s *Service) AddMember(ctx context.Context, account *Account, group *Group, rights Rights) (*Member, error) {
	if account == nil || group == nil {
		return nil, fmt.Errorf("%w: account and group are required", ErrInvalidInput)
	}
	_, err := s.store.Members().FindByAccount(ctx, account.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: account is already a member of a group", ErrConflict)
	case !isNotFound(err):
		return nil, fmt.Errorf("access: find membership: %w", err)
	}
	now := s.now().UTC()
	member := &Member{
		ID:        s.newID(),
		GroupID:   group.ID,
		AccountID: account.ID,
		Rights:    rights,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Members().Insert(ctx, member); err != nil {
		return nil, fmt.Errorf("access: add member: %w", err)
	}
	return member, nil
}

// UpdateMember replaces the rights of the account's membership in the group.
func (s *Service) UpdateMember(ctx context.Context, account *Account, group *Group, rights Rights) (*Member, error) {
	if account == nil || group == nil {
		return nil, fmt.Errorf("%w: account and group are required", ErrInvalidInput)
	}
	member, err := s.store.Members().UpdateRights(ctx, group.ID, account.ID, rights)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: update member: %w", err)
	}
	return member, nil
}

// RemoveMember deletes the account's membership in the group and returns
// the removed row.
func (s *Service) RemoveMember(ctx context.Context, account *Account, group *Group) (*Member, error) {
	if account == nil || group == nil {
		return nil, fmt.Errorf("%w: account and group are required", ErrInvalidInput)
	}
	member, err := s.store.Members().Delete(ctx, group.ID, account.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: remove member: %w", err)
	}
	return member, nil
}

// MembersByGroup lists the group's membership rows.
func (s *Service) MembersByGroup(ctx context.Context, group *Group) ([]*Member, error) {
	if group == nil {
		return nil, fmt.Errorf("%w: group is required", ErrInvalidInput)
	}
	members, err := s.store.Members().ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("access: list members: %w", err)
	}
	return members, nil
}
