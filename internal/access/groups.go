package access

import (
	"context"
	"fmt"
)

// ConfirmGroupPermission checks that the account's membership in the
// group carries the required right. A nil return is the only grant;
// a missing membership and a membership without the right both deny.
// There is no advisory mode.
func (s *Service) ConfirmGroupPermission(ctx context.Context, required Right, group *Group, account *Account) error {
	if group == nil || account == nil || !required.Valid() {
		return ErrPermissionDenied
	}
	member, err := s.store.Members().Find(ctx, group.ID, account.ID)
	if err != nil {
		if isNotFound(err) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("access: find membership: %w", err)
	}
	if !member.Rights.Has(required) {
		return ErrPermissionDenied
	}
	return nil
}

// ConfirmPermission resolves the account's single group and checks the
// required right against it. Returns the group on grant.
func (s *Service) ConfirmPermission(ctx context.Context, account *Account, required Right) (*Group, error) {
	group, err := s.GroupByMember(ctx, account)
	if err != nil {
		return nil, err
	}
	if err := s.ConfirmGroupPermission(ctx, required, group, account); err != nil {
		return nil, err
	}
	return group, nil
}

// GroupByMember returns the one group the account belongs to.
func (s *Service) GroupByMember(ctx context.Context, account *Account) (*Group, error) {
	if account == nil {
		return nil, ErrNoMembership
	}
	member, err := s.store.Members().FindByAccount(ctx, account.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoMembership
		}
		return nil, fmt.Errorf("access: find membership: %w", err)
	}
	group, err := s.store.Groups().Find(ctx, member.GroupID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoMembership
		}
		return nil, fmt.Errorf("access: find member group: %w", err)
	}
	return group, nil
}

// CreateGroup persists the group and enrolls the creator with full
// rights. The store has no multi-row transaction, so a failed member
// write rolls the group back with a compensating delete; a crash between
// the two writes can still leave an ownerless group behind.
func (s *Service) CreateGroup(ctx context.Context, group *Group, creator *Account) (*Group, *Member, error) {
	if creator == nil {
		return nil, nil, fmt.Errorf("%w: creator account is required", ErrInvalidInput)
	}
	if group == nil || group.Name == "" {
		return nil, nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	// One membership per account, so a creator already enrolled somewhere
	// cannot found another group.
	_, err := s.store.Members().FindByAccount(ctx, creator.ID)
	switch {
	case err == nil:
		return nil, nil, fmt.Errorf("%w: account is already a member of a group", ErrConflict)
	case !isNotFound(err):
		return nil, nil, fmt.Errorf("access: find membership: %w", err)
	}
	now := s.now().UTC()
	group.ID = s.newID()
	group.CreatedAt = now
	group.UpdatedAt = now
	if err := s.store.Groups().Insert(ctx, group); err != nil {
		return nil, nil, fmt.Errorf("access: create group: %w", err)
	}
	member := &Member{
		ID:        s.newID(),
		GroupID:   group.ID,
		AccountID: creator.ID,
		Rights:    FullRights(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Members().Insert(ctx, member); err != nil {
		if _, delErr := s.store.Groups().Delete(ctx, group.ID); delErr != nil {
			return nil, nil, fmt.Errorf("access: enroll creator: %w (group %s left without members: %v)", err, group.ID, delErr)
		}
		return nil, nil, fmt.Errorf("access: enroll creator: %w", err)
	}
	return group, member, nil
}

// UpdateGroup overwrites the group's mutable fields. Requires WRITE.
func (s *Service) UpdateGroup(ctx context.Context, group *Group, account *Account) (*Group, error) {
	if group == nil || group.ID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	existing, err := s.store.Groups().Find(ctx, group.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: find group: %w", err)
	}
	if err := s.ConfirmGroupPermission(ctx, RightWrite, existing, account); err != nil {
		return nil, err
	}
	group.UpdatedAt = s.now().UTC()
	updated, err := s.store.Groups().Update(ctx, group)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: update group: %w", err)
	}
	return updated, nil
}

// DeleteGroup removes the group. Requires DELETE. Membership rows of the
// deleted group are the caller's cleanup; they are not cascaded here.
func (s *Service) DeleteGroup(ctx context.Context, groupID string, account *Account) (*Group, error) {
	group, err := s.store.Groups().Find(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: find group: %w", err)
	}
	if err := s.ConfirmGroupPermission(ctx, RightDelete, group, account); err != nil {
		return nil, err
	}
	deleted, err := s.store.Groups().Delete(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: delete group: %w", err)
	}
	return deleted, nil
}

// GetGroup returns a group by id.
func (s *Service) GetGroup(ctx context.Context, id string) (*Group, error) {
	group, err := s.store.Groups().Find(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: find group: %w", err)
	}
	return group, nil
}

// GetGroups lists all groups. The listing is an org directory: any
// authenticated caller may read it, no per-group right is checked.
func (s *Service) GetGroups(ctx context.Context) ([]*Group, error) {
	groups, err := s.store.Groups().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("access: list groups: %w", err)
	}
	return groups, nil
}
