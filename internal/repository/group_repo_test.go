package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"morak/internal/database"
	"morak/internal/testutil"
)

func TestGroupRepositoryLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	owner := testutil.InsertMember(t, db, "owner-provider", "owner")
	guest := testutil.InsertMember(t, db, "guest-provider", "guest")

	created, err := repo.CreateGroup(ctx, "boostcamp web-mobile", 1, owner, "code-1")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if created.ID == 0 || created.MembersCount != 1 || created.AccessCode != "code-1" {
		t.Fatalf("CreateGroup() = %+v", created)
	}

	isMember, err := repo.IsMember(ctx, created.ID, owner)
	if err != nil || !isMember {
		t.Fatalf("owner should be a member after creation (isMember=%v, err=%v)", isMember, err)
	}

	if err := repo.AddMember(ctx, created.ID, guest); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := repo.AddMember(ctx, created.ID, guest); !errors.Is(err, ErrDuplicateMembership) {
		t.Fatalf("second AddMember() error = %v, want ErrDuplicateMembership", err)
	}

	t.Run("GetGroupByID counts members", func(t *testing.T) {
		group, err := repo.GetGroupByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetGroupByID() error = %v", err)
		}
		if group == nil || group.MembersCount != 2 {
			t.Fatalf("GetGroupByID() = %+v, want 2 members", group)
		}
		if group.AccessCode != "" {
			t.Errorf("GetGroupByID() must not expose the access code, got %q", group.AccessCode)
		}
	})

	t.Run("GetGroupByID missing", func(t *testing.T) {
		group, err := repo.GetGroupByID(ctx, 9999)
		if err != nil || group != nil {
			t.Fatalf("GetGroupByID(9999) = %+v, %v; want nil, nil", group, err)
		}
	})

	t.Run("GetGroupByAccessCode", func(t *testing.T) {
		group, err := repo.GetGroupByAccessCode(ctx, "code-1")
		if err != nil {
			t.Fatalf("GetGroupByAccessCode() error = %v", err)
		}
		if group == nil || group.ID != created.ID || group.MembersCount != 2 {
			t.Fatalf("GetGroupByAccessCode() = %+v", group)
		}

		missing, err := repo.GetGroupByAccessCode(ctx, "nope")
		if err != nil || missing != nil {
			t.Fatalf("GetGroupByAccessCode(nope) = %+v, %v; want nil, nil", missing, err)
		}
	})

	t.Run("ListGroupMembers in join order", func(t *testing.T) {
		members, err := repo.ListGroupMembers(ctx, created.ID)
		if err != nil {
			t.Fatalf("ListGroupMembers() error = %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("ListGroupMembers() returned %d members, want 2", len(members))
		}
		if members[0].ProviderID != "owner-provider" || members[1].ProviderID != "guest-provider" {
			t.Errorf("unexpected member order: %+v", members)
		}
		if members[1].Email != "guest@example.com" || members[1].ProfilePicture != "guest.png" {
			t.Errorf("member information not mapped: %+v", members[1])
		}
	})

	t.Run("ListMemberGroups includes access code", func(t *testing.T) {
		groups, err := repo.ListMemberGroups(ctx, guest)
		if err != nil {
			t.Fatalf("ListMemberGroups() error = %v", err)
		}
		if len(groups) != 1 || groups[0].AccessCode != "code-1" || groups[0].MembersCount != 2 {
			t.Fatalf("ListMemberGroups() = %+v", groups)
		}
	})

	t.Run("RemoveMember", func(t *testing.T) {
		removed, err := repo.RemoveMember(ctx, created.ID, guest)
		if err != nil || !removed {
			t.Fatalf("RemoveMember() = %v, %v; want true, nil", removed, err)
		}
		removed, err = repo.RemoveMember(ctx, created.ID, guest)
		if err != nil || removed {
			t.Fatalf("second RemoveMember() = %v, %v; want false, nil", removed, err)
		}
	})
}

func TestListGroupsEmptyAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	groups, err := repo.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if groups == nil || len(groups) != 0 {
		t.Fatalf("ListGroups() on empty db = %#v, want empty non-nil slice", groups)
	}

	a := testutil.InsertMember(t, db, "a", "alice")
	b := testutil.InsertMember(t, db, "b", "bob")
	first, err := repo.CreateGroup(ctx, "first", 1, a, "code-a")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if _, err := repo.CreateGroup(ctx, "second", 2, b, "code-b"); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if err := repo.AddMember(ctx, first.ID, b); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	groups, err = repo.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("ListGroups() returned %d groups, want 2", len(groups))
	}
	if groups[0].Title != "first" || groups[0].MembersCount != 2 {
		t.Errorf("groups[0] = %+v, want first with 2 members", groups[0])
	}
	if groups[1].Title != "second" || groups[1].MembersCount != 1 || groups[1].GroupTypeID != 2 {
		t.Errorf("groups[1] = %+v, want second with 1 member", groups[1])
	}
}

func TestCreateGroupDuplicateAccessCodeRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	owner := testutil.InsertMember(t, db, "owner", "owner")
	if _, err := repo.CreateGroup(ctx, "one", 1, owner, "same-code"); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if _, err := repo.CreateGroup(ctx, "two", 1, owner, "same-code"); err == nil {
		t.Fatal("expected duplicate access code to fail")
	}

	groups, err := repo.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("failed creation must not leave a group behind, got %d groups", len(groups))
	}
}

func TestInsertMembershipInsideTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	owner := testutil.InsertMember(t, db, "owner", "owner")
	guest := testutil.InsertMember(t, db, "guest", "guest")
	group, err := repo.CreateGroup(ctx, "tx", 1, owner, "tx-code")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	errAbort := errors.New("abort")
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		if err := insertMembership(ctx, tx, group.ID, guest, time.Now().UTC()); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithTx() error = %v, want errAbort", err)
	}
	if isMember, _ := repo.IsMember(ctx, group.ID, guest); isMember {
		t.Error("membership inserted in a rolled back transaction must not persist")
	}

	err = db.WithTx(ctx, func(tx *database.Tx) error {
		return insertMembership(ctx, tx, group.ID, owner, time.Now().UTC())
	})
	if !errors.Is(err, ErrDuplicateMembership) {
		t.Errorf("duplicate insert in a transaction error = %v, want ErrDuplicateMembership", err)
	}
}
