package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/clientdesk/clientdesk/internal/model"
)

// storeFactory returns an empty store for one subtest.
type storeFactory func(t *testing.T) Store

// runStoreContract exercises the behavior every Store must provide.
func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("InsertAndFindAccount", func(t *testing.T) {
		testInsertAndFindAccount(t, newStore(t))
	})
	t.Run("AccountUniqueness", func(t *testing.T) {
		testAccountUniqueness(t, newStore(t))
	})
	t.Run("UpdateAccount", func(t *testing.T) {
		testUpdateAccount(t, newStore(t))
	})
	t.Run("ProjectLifecycle", func(t *testing.T) {
		testProjectLifecycle(t, newStore(t))
	})
	t.Run("ListProjectsByOwner", func(t *testing.T) {
		testListProjectsByOwner(t, newStore(t))
	})
	t.Run("RejectsUnknownProjectState", func(t *testing.T) {
		testRejectsUnknownProjectState(t, newStore(t))
	})
	t.Run("RollbackOnError", func(t *testing.T) {
		testRollbackOnError(t, newStore(t))
	})
	t.Run("RollbackOnPanic", func(t *testing.T) {
		testRollbackOnPanic(t, newStore(t))
	})
}

func newTestAccount(handle string) *model.Account {
	return &model.Account{
		Handle:       handle,
		Email:        handle + "@example.com",
		FullName:     "Test " + handle,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		Active:       true,
	}
}

func mustInsertAccount(t *testing.T, ctx context.Context, store Store, handle string) *model.Account {
	t.Helper()
	account := newTestAccount(handle)
	err := store.WithTx(ctx, func(tx Tx) error {
		return tx.InsertAccount(ctx, account)
	})
	if err != nil {
		t.Fatalf("insert account %q: %v", handle, err)
	}
	return account
}

func mustInsertProject(t *testing.T, ctx context.Context, store Store, ownerID int64, shortName string) *model.Project {
	t.Helper()
	project := &model.Project{
		AccountID: ownerID,
		FullName:  "Project " + shortName,
		ShortName: shortName,
		State:     model.ProjectActive,
	}
	err := store.WithTx(ctx, func(tx Tx) error {
		return tx.InsertProject(ctx, project)
	})
	if err != nil {
		t.Fatalf("insert project %q: %v", shortName, err)
	}
	return project
}

func testInsertAndFindAccount(t *testing.T, store Store) {
	ctx := context.Background()
	account := mustInsertAccount(t, ctx, store, "alice")

	if account.ID <= 0 {
		t.Fatalf("expected generated ID, got %d", account.ID)
	}
	if account.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	err := store.WithTx(ctx, func(tx Tx) error {
		byHandle, err := tx.FindAccountByHandle(ctx, "alice")
		if err != nil {
			return err
		}
		if byHandle.ID != account.ID || byHandle.Email != account.Email {
			t.Errorf("unexpected account by handle: %+v", byHandle)
		}

		byID, err := tx.GetAccountByID(ctx, account.ID)
		if err != nil {
			return err
		}
		if byID.Handle != "alice" || byID.PasswordHash != account.PasswordHash {
			t.Errorf("unexpected account by ID: %+v", byID)
		}

		if _, err := tx.FindAccountByHandle(ctx, "nobody"); !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound for unknown handle, got %v", err)
		}
		if _, err := tx.GetAccountByID(ctx, account.ID+100); !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound for unknown ID, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
}

func testAccountUniqueness(t *testing.T, store Store) {
	ctx := context.Background()
	mustInsertAccount(t, ctx, store, "alice")
	bob := mustInsertAccount(t, ctx, store, "bob")

	sameHandle := newTestAccount("alice")
	sameHandle.Email = "other@example.com"
	err := store.WithTx(ctx, func(tx Tx) error {
		return tx.InsertAccount(ctx, sameHandle)
	})
	if !errors.Is(err, ErrHandleExists) {
		t.Errorf("expected ErrHandleExists, got %v", err)
	}

	sameEmail := newTestAccount("carol")
	sameEmail.Email = "alice@example.com"
	err = store.WithTx(ctx, func(tx Tx) error {
		return tx.InsertAccount(ctx, sameEmail)
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	bob.Email = "alice@example.com"
	err = store.WithTx(ctx, func(tx Tx) error {
		return tx.UpdateAccount(ctx, bob)
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists on update, got %v", err)
	}
}

func testUpdateAccount(t *testing.T, store Store) {
	ctx := context.Background()
	account := mustInsertAccount(t, ctx, store, "alice")

	account.FullName = "Alice Liddell"
	account.Email = "liddell@example.com"
	account.Active = false
	err := store.WithTx(ctx, func(tx Tx) error {
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		t.Fatalf("update account: %v", err)
	}

	err = store.WithTx(ctx, func(tx Tx) error {
		got, err := tx.GetAccountByID(ctx, account.ID)
		if err != nil {
			return err
		}
		if got.FullName != "Alice Liddell" || got.Email != "liddell@example.com" || got.Active {
			t.Errorf("update not persisted: %+v", got)
		}
		if got.Handle != "alice" {
			t.Errorf("handle changed to %q", got.Handle)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}

	missing := newTestAccount("ghost")
	missing.ID = account.ID + 100
	err = store.WithTx(ctx, func(tx Tx) error {
		return tx.UpdateAccount(ctx, missing)
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func testProjectLifecycle(t *testing.T, store Store) {
	ctx := context.Background()
	owner := mustInsertAccount(t, ctx, store, "alice")
	project := mustInsertProject(t, ctx, store, owner.ID, "web")

	if project.ID <= 0 {
		t.Fatalf("expected generated ID, got %d", project.ID)
	}

	project.State = model.ProjectCancelled
	err := store.WithTx(ctx, func(tx Tx) error {
		return tx.UpdateProject(ctx, project)
	})
	if err != nil {
		t.Fatalf("update project: %v", err)
	}

	err = store.WithTx(ctx, func(tx Tx) error {
		got, err := tx.GetProjectByID(ctx, project.ID)
		if err != nil {
			return err
		}
		if got.State != model.ProjectCancelled || got.AccountID != owner.ID || got.Description != "" {
			t.Errorf("unexpected project: %+v", got)
		}
		return tx.DeleteProject(ctx, project.ID)
	})
	if err != nil {
		t.Fatalf("cancel and delete: %v", err)
	}

	err = store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetProjectByID(ctx, project.ID); !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("expected ErrProjectNotFound after delete, got %v", err)
		}
		if err := tx.DeleteProject(ctx, project.ID); !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("expected ErrProjectNotFound on second delete, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	orphan := &model.Project{AccountID: owner.ID + 100, FullName: "Orphan", ShortName: "orphan", State: model.ProjectActive}
	err = store.WithTx(ctx, func(tx Tx) error {
		return tx.InsertProject(ctx, orphan)
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for unknown owner, got %v", err)
	}
}

func testListProjectsByOwner(t *testing.T, store Store) {
	ctx := context.Background()
	alice := mustInsertAccount(t, ctx, store, "alice")
	bob := mustInsertAccount(t, ctx, store, "bob")

	first := mustInsertProject(t, ctx, store, alice.ID, "one")
	mustInsertProject(t, ctx, store, bob.ID, "other")
	second := mustInsertProject(t, ctx, store, alice.ID, "two")

	err := store.WithTx(ctx, func(tx Tx) error {
		projects, err := tx.ListProjectsByOwner(ctx, alice.ID)
		if err != nil {
			return err
		}
		if len(projects) != 2 {
			t.Fatalf("expected 2 projects, got %d", len(projects))
		}
		if projects[0].ID != first.ID || projects[1].ID != second.ID {
			t.Errorf("projects out of order: %d, %d", projects[0].ID, projects[1].ID)
		}

		none, err := tx.ListProjectsByOwner(ctx, bob.ID+100)
		if err != nil {
			return err
		}
		if none == nil || len(none) != 0 {
			t.Errorf("expected empty non-nil list, got %v", none)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
}

func testRollbackOnError(t *testing.T, store Store) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := store.WithTx(ctx, func(tx Tx) error {
		if err := tx.InsertAccount(ctx, newTestAccount("alice")); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	err = store.WithTx(ctx, func(tx Tx) error {
		_, err := tx.FindAccountByHandle(ctx, "alice")
		return err
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected rolled back insert, got %v", err)
	}
}

func testRollbackOnPanic(t *testing.T, store Store) {
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = store.WithTx(ctx, func(tx Tx) error {
			if err := tx.InsertAccount(ctx, newTestAccount("alice")); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	// The handle is free again, so the insert was not kept.
	mustInsertAccount(t, ctx, store, "alice")
}

func testRejectsUnknownProjectState(t *testing.T, store Store) {
	ctx := context.Background()
	owner := mustInsertAccount(t, ctx, store, "alice")

	err := store.WithTx(ctx, func(tx Tx) error {
		return tx.InsertProject(ctx, &model.Project{
			AccountID: owner.ID,
			FullName:  "Archive",
			ShortName: "archive",
			State:     model.ProjectState("archived"),
		})
	})
	if !errors.Is(err, ErrInvalidProjectState) {
		t.Fatalf("insert with unknown state: err = %v, want ErrInvalidProjectState", err)
	}

	project := mustInsertProject(t, ctx, store, owner.ID, "web")
	err = store.WithTx(ctx, func(tx Tx) error {
		project.State = model.ProjectState("archived")
		return tx.UpdateProject(ctx, project)
	})
	if !errors.Is(err, ErrInvalidProjectState) {
		t.Fatalf("update with unknown state: err = %v, want ErrInvalidProjectState", err)
	}

	var stored *model.Project
	err = store.WithTx(ctx, func(tx Tx) error {
		var err error
		stored, err = tx.GetProjectByID(ctx, project.ID)
		return err
	})
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.State != model.ProjectActive {
		t.Errorf("state = %q, want %q", stored.State, model.ProjectActive)
	}
}
