/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docrepo_test

import (
	"context"
	stderrors "errors"
	"runtime"
	"testing"
	"time"

	"github.com/suparena/docrepo"
	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/storagemodels"
)

func TestRunInTransactionCommit(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()

	n, err := docrepo.RunInTransaction(ctx, store, nil, func(txOpts *storagemodels.Options) (int, error) {
		for _, title := range []string{"one", "two", "three"} {
			if _, err := repo.Save(ctx, newActivity(title), txOpts); err != nil {
				return 0, err
			}
		}
		return 3, nil
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}
	if n != 3 {
		t.Errorf("unit result = %d, want 3", n)
	}
	if store.Count() != 3 {
		t.Errorf("store holds %d documents after commit, want 3", store.Count())
	}
}

func TestRunInTransactionAbortsOnError(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()
	boom := stderrors.New("business rule violated")

	_, err := docrepo.RunInTransaction(ctx, store, nil, func(txOpts *storagemodels.Options) (int, error) {
		for _, title := range []string{"one", "two"} {
			if _, err := repo.Save(ctx, newActivity(title), txOpts); err != nil {
				return 0, err
			}
		}
		return 0, boom
	})
	if err != boom {
		t.Fatalf("unit error not propagated unchanged: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("store holds %d documents after abort, want 0", store.Count())
	}
}

func TestRunInTransactionReadYourWrites(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()

	_, err := docrepo.RunInTransaction(ctx, store, nil, func(txOpts *storagemodels.Options) (struct{}, error) {
		saved, err := repo.Save(ctx, newActivity("staged"), txOpts)
		if err != nil {
			return struct{}{}, err
		}

		// Visible through the session before commit.
		inside, err := repo.FindByID(ctx, saved.EntityID(), txOpts)
		if err != nil {
			return struct{}{}, err
		}
		if inside == nil {
			t.Error("staged write invisible inside its transaction")
		}

		// Invisible outside it.
		outside, err := repo.FindByID(ctx, saved.EntityID(), nil)
		if err != nil {
			return struct{}{}, err
		}
		if outside != nil {
			t.Error("staged write visible outside its transaction")
		}
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}
}

func TestRunInTransactionJoinsEnclosingSession(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()

	sess, err := store.StartSession(ctx)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	outer := (&storagemodels.Options{}).WithSession(sess)

	// The inner unit must not commit; the session stays with the caller.
	_, err = docrepo.RunInTransaction(ctx, store, outer, func(txOpts *storagemodels.Options) (struct{}, error) {
		if txOpts.Session != sess {
			t.Error("unit did not join the enclosing session")
		}
		_, err := repo.Save(ctx, newActivity("joined"), txOpts)
		return struct{}{}, err
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}
	if store.Count() != 0 {
		t.Error("joined unit committed the enclosing session")
	}

	if err := sess.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("store holds %d documents, want 1", store.Count())
	}
}

func TestDeleteAllMatchingNilFilter(t *testing.T) {
	repo, _ := newActivityRepo(t)

	_, err := repo.DeleteAllMatching(context.Background(), nil, nil)
	if !errors.IsInvalidArgument(err) {
		t.Errorf("expected an invalid-argument error, got %v", err)
	}
}

func TestDeleteAllMatching(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()

	for _, title := range []string{"stale", "stale", "fresh"} {
		if _, err := repo.Save(ctx, newActivity(title), nil); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	n, err := repo.DeleteAllMatching(ctx, storagemodels.Filter{"Title": "stale"}, nil)
	if err != nil {
		t.Fatalf("DeleteAllMatching failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d entities, want 2", n)
	}

	// Soft delete: the rows remain, flagged.
	if store.Count() != 3 {
		t.Errorf("store holds %d documents, want 3", store.Count())
	}
	all, err := repo.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	deleted := 0
	for _, e := range all {
		if e.IsDeleted() {
			deleted++
		}
	}
	if deleted != 2 {
		t.Errorf("%d entities flagged deleted, want 2", deleted)
	}
}

func TestDeleteAllMatchingFailureStopsStream(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()

	// More matches than the stream's default channel buffer, so an
	// abandoned producer would stay blocked on send.
	for i := 0; i < 150; i++ {
		if _, err := repo.Save(ctx, newActivity("stale"), nil); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	boom := stderrors.New("storage down")
	store.WithUpdateError(boom)

	before := runtime.NumGoroutine()
	if _, err := repo.DeleteAllMatching(ctx, storagemodels.Filter{"Title": "stale"}, nil); err != boom {
		t.Fatalf("expected the storage error, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("%d goroutines still running, started with %d: stream producer not released",
				runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDeleteAllMatchingAbortsAtomically(t *testing.T) {
	repo, store := newActivityRepo(t)
	ctx := context.Background()

	for _, title := range []string{"stale", "stale"} {
		if _, err := repo.Save(ctx, newActivity(title), nil); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	boom := stderrors.New("storage down")
	store.WithUpdateError(boom)

	_, err := repo.DeleteAllMatching(ctx, storagemodels.Filter{"Title": "stale"}, nil)
	if err != boom {
		t.Fatalf("expected the storage error, got %v", err)
	}

	store.WithUpdateError(nil)
	all, err := repo.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	for _, e := range all {
		if e.IsDeleted() {
			t.Error("entity flagged deleted despite the aborted batch")
		}
	}
}
