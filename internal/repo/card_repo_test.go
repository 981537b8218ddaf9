package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCategory(t *testing.T, db *gorm.DB) string {
	t.Helper()
	cat := domain.Category{ID: uuid.NewString(), Name: "test", Color: "#3b82f6"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return cat.ID
}

func mustCards(t *testing.T, db *gorm.DB, categoryID string, codes ...string) {
	t.Helper()
	for _, code := range codes {
		c := domain.Card{ID: uuid.NewString(), Code: code, CategoryID: &categoryID}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("create card %q: %v", code, err)
		}
	}
}

func TestClaimRandomUnusedCard_MarksUsed(t *testing.T) {
	db := newDB(t)
	catID := mustCategory(t, db)
	mustCards(t, db, catID, "only-one")

	var claimed *domain.Card
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		claimed, err = ClaimRandomUnusedCard(context.Background(), tx, catID, "key-1")
		return err
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed.IsUsed || claimed.UsedBy == nil || *claimed.UsedBy != "key-1" {
		t.Fatalf("returned card not marked: %+v", claimed)
	}

	// The committed row reflects the claim.
	stored, err := GetCard(context.Background(), db, claimed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IsUsed || stored.UsedBy == nil || *stored.UsedBy != "key-1" {
		t.Fatalf("stored card not marked: %+v", stored)
	}
}

func TestClaimRandomUnusedCard_SkipsUsedAndForeignCategories(t *testing.T) {
	db := newDB(t)
	catID := mustCategory(t, db)
	otherID := mustCategory(t, db)
	mustCards(t, db, otherID, "foreign")

	// The only card in catID is already used.
	used := "key-0"
	c := domain.Card{ID: uuid.NewString(), Code: "spent", CategoryID: &catID, IsUsed: true, UsedBy: &used}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create used card: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ClaimRandomUnusedCard(context.Background(), tx, catID, "key-1")
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRandomUnusedCard_RollbackLeavesCardUnused(t *testing.T) {
	db := newDB(t)
	catID := mustCategory(t, db)
	mustCards(t, db, catID, "kept")

	boom := errors.New("later step failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ClaimRandomUnusedCard(context.Background(), tx, catID, "key-1"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	n, err := CountUnusedCards(context.Background(), db, catID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rollback must leave the card unused, unused=%d", n)
	}
}

func TestCreateCards_SkipsDuplicatesIndividually(t *testing.T) {
	db := newDB(t)
	catID := mustCategory(t, db)
	mustCards(t, db, catID, "dup")

	inserted, duplicates, err := CreateCards(context.Background(), db, []string{"dup", "fresh-1", "fresh-2"}, &catID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inserted != 2 || duplicates != 1 {
		t.Fatalf("inserted=%d duplicates=%d, want 2/1", inserted, duplicates)
	}
}

func TestExistingCodes(t *testing.T) {
	db := newDB(t)
	catID := mustCategory(t, db)
	mustCards(t, db, catID, "a", "b")

	got, err := ExistingCodes(context.Background(), db, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("existing: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
}

func TestListUnusedCards_PaginationBounds(t *testing.T) {
	db := newDB(t)
	catID := mustCategory(t, db)
	mustCards(t, db, catID, "c1", "c2", "c3")

	page, err := ListUnusedCards(context.Background(), db, catID, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 per page, got %d", len(page))
	}

	// limit <= 0 disables pagination.
	all, err := ListUnusedCards(context.Background(), db, catID, 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3, got %d", len(all))
	}
}

func TestIsDuplicateErr(t *testing.T) {
	cases := map[string]bool{
		"UNIQUE constraint failed: cards.code":            true,
		"constraint failed: UNIQUE constraint failed":     true,
		"Error 1062: Duplicate entry 'x' for key 'cards'": true,
		"record not found":                                false,
	}
	for msg, want := range cases {
		if got := isDuplicateErr(errors.New(msg)); got != want {
			t.Fatalf("isDuplicateErr(%q) = %v, want %v", msg, got, want)
		}
	}
	if !isDuplicateErr(gorm.ErrDuplicatedKey) {
		t.Fatalf("gorm.ErrDuplicatedKey must classify as duplicate")
	}
}
