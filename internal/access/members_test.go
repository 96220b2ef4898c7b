package access

import (
	"context"
	"errors"
	"testing"
)

func TestAddMemberSingleGroupInvariant(t *testing.T) {
	svc, store := newTestService(t)
	creator := registerActiveAccount(t, svc, store, "c@x.com", "carol", "p")
	joiner := registerActiveAccount(t, svc, store, "j@x.com", "joe", "p")

	first, _, err := svc.CreateGroup(context.Background(), &Group{Name: "One"}, creator)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	second := &Group{ID: "g2", Name: "Two"}
	if err := store.Groups().Insert(context.Background(), second); err != nil {
		t.Fatalf("insert group: %v", err)
	}

	if _, err := svc.AddMember(context.Background(), joiner, first, NewRights(RightRead)); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := svc.AddMember(context.Background(), joiner, second, NewRights(RightRead)); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for second membership, got %v", err)
	}
	// The creator is enrolled by CreateGroup, so re-adding them conflicts too.
	if _, err := svc.AddMember(context.Background(), creator, second, FullRights()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for creator, got %v", err)
	}
}

func TestUpdateMemberRights(t *testing.T) {
	svc, store := newTestService(t)
	creator := registerActiveAccount(t, svc, store, "c@x.com", "carol", "p")
	joiner := registerActiveAccount(t, svc, store, "j@x.com", "joe", "p")
	group, _, err := svc.CreateGroup(context.Background(), &Group{Name: "One"}, creator)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := svc.AddMember(context.Background(), joiner, group, NewRights(RightRead)); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	updated, err := svc.UpdateMember(context.Background(), joiner, group, NewRights(RightRead, RightWrite))
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if !updated.Rights.Has(RightWrite) || updated.Rights.Has(RightDelete) {
		t.Fatalf("unexpected rights %v", updated.Rights)
	}
	if err := svc.ConfirmGroupPermission(context.Background(), RightWrite, group, joiner); err != nil {
		t.Fatalf("WRITE denied after update: %v", err)
	}
}

func TestMemberRightsIsolatedFromStore(t *testing.T) {
	svc, store := newTestService(t)
	creator := registerActiveAccount(t, svc, store, "c@x.com", "carol", "p")
	group, _, err := svc.CreateGroup(context.Background(), &Group{Name: "One"}, creator)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	// Mutating a returned row must not reach into store state; rights
	// change only through UpdateRights.
	member, err := store.Members().Find(context.Background(), group.ID, creator.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	delete(member.Rights, RightDelete)

	again, err := store.Members().Find(context.Background(), group.ID, creator.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !again.Rights.Has(RightDelete) {
		t.Fatal("store rights changed through a returned copy")
	}
	if err := svc.ConfirmGroupPermission(context.Background(), RightDelete, group, creator); err != nil {
		t.Fatalf("DELETE denied after external mutation: %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	svc, store := newTestService(t)
	creator := registerActiveAccount(t, svc, store, "c@x.com", "carol", "p")
	joiner := registerActiveAccount(t, svc, store, "j@x.com", "joe", "p")
	group, _, err := svc.CreateGroup(context.Background(), &Group{Name: "One"}, creator)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := svc.AddMember(context.Background(), joiner, group, NewRights(RightRead)); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	removed, err := svc.RemoveMember(context.Background(), joiner, group)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if removed.AccountID != joiner.ID {
		t.Fatalf("removed wrong member %+v", removed)
	}
	if err := svc.ConfirmGroupPermission(context.Background(), RightRead, group, joiner); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied after removal, got %v", err)
	}
	if _, err := svc.RemoveMember(context.Background(), joiner, group); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
