package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateCodes_Validation(t *testing.T) {
	svc := &CardService{}
	if _, err := svc.GenerateCodes(0, ""); !errors.Is(err, ErrInvalidGenerateCount) {
		t.Fatalf("count 0: expected ErrInvalidGenerateCount, got %v", err)
	}
	if _, err := svc.GenerateCodes(1001, ""); !errors.Is(err, ErrInvalidGenerateCount) {
		t.Fatalf("count 1001: expected ErrInvalidGenerateCount, got %v", err)
	}
	if _, err := svc.GenerateCodes(1, strings.Repeat("x", 51)); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("long prefix: expected ErrInvalidPrefix, got %v", err)
	}
}

func TestGenerateCodes_ShapeAndUniqueness(t *testing.T) {
	svc := &CardService{}
	codes, err := svc.GenerateCodes(200, "gc-")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(codes) != 200 {
		t.Fatalf("expected 200 codes, got %d", len(codes))
	}
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if !strings.HasPrefix(code, "gc-") {
			t.Fatalf("code %q missing prefix", code)
		}
		if len(code) != len("gc-")+randomCodeLen {
			t.Fatalf("code %q has unexpected length %d", code, len(code))
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code in batch: %q", code)
		}
		seen[code] = struct{}{}
	}
}

func TestWriteCodes_Validation(t *testing.T) {
	svc := &CardService{DB: newTestDB(t)}
	ctx := context.Background()

	if _, err := svc.WriteCodes(ctx, nil, nil); !errors.Is(err, ErrInvalidCodes) {
		t.Fatalf("empty batch: expected ErrInvalidCodes, got %v", err)
	}
	if _, err := svc.WriteCodes(ctx, []string{""}, nil); !errors.Is(err, ErrInvalidCodes) {
		t.Fatalf("empty code: expected ErrInvalidCodes, got %v", err)
	}
	if _, err := svc.WriteCodes(ctx, []string{strings.Repeat("x", 256)}, nil); !errors.Is(err, ErrInvalidCodes) {
		t.Fatalf("oversized code: expected ErrInvalidCodes, got %v", err)
	}
}

func TestWriteCodes_CountsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := &CardService{DB: db}
	ctx := context.Background()

	res, err := svc.WriteCodes(ctx, []string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if res.InsertedCount != 3 || res.DuplicateCount != 0 {
		t.Fatalf("first write unexpected: %+v", res)
	}

	// Overlapping batch: existing codes count as duplicates, new ones land.
	res, err = svc.WriteCodes(ctx, []string{"b", "c", "d"}, nil)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if res.TotalCount != 3 || res.InsertedCount != 1 || res.DuplicateCount != 2 {
		t.Fatalf("second write unexpected: %+v", res)
	}
}

func TestCheckCodes(t *testing.T) {
	db := newTestDB(t)
	svc := &CardService{DB: db}
	ctx := context.Background()

	if _, err := svc.WriteCodes(ctx, []string{"x1", "x2"}, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	existing, err := svc.CheckCodes(ctx, []string{"x1", "x2", "x3"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(existing) != 2 {
		t.Fatalf("expected 2 existing, got %v", existing)
	}

	// A miss-only batch returns an empty (non-nil) slice.
	existing, err = svc.CheckCodes(ctx, []string{"nope"})
	if err != nil {
		t.Fatalf("check miss: %v", err)
	}
	if existing == nil || len(existing) != 0 {
		t.Fatalf("expected empty slice, got %#v", existing)
	}

	if _, err := svc.CheckCodes(ctx, nil); !errors.Is(err, ErrInvalidCodes) {
		t.Fatalf("empty batch: expected ErrInvalidCodes, got %v", err)
	}
}

func TestListUnused_PaginationAndScope(t *testing.T) {
	db := newTestDB(t)
	catID := seedCategory(t, db, "listed")
	otherID := seedCategory(t, db, "other")
	seedCards(t, db, catID, 7)
	seedCards(t, db, otherID, 2)

	svc := &CardService{DB: db}
	ctx := context.Background()

	cards, total, err := svc.ListUnused(ctx, catID, 1, 5)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if total != 7 || len(cards) != 5 {
		t.Fatalf("page 1 unexpected: total=%d len=%d", total, len(cards))
	}

	cards, _, err = svc.ListUnused(ctx, catID, 2, 5)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("page 2 unexpected: len=%d", len(cards))
	}

	// Unscoped listing covers both categories.
	_, total, err = svc.ListUnused(ctx, "", 1, 50)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 9 {
		t.Fatalf("expected 9 total, got %d", total)
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	catID := seedCategory(t, db, "stats")
	seedCards(t, db, catID, 3)

	// One withdrawal makes one card used.
	wsvc := &WithdrawService{DB: db}
	if _, err := wsvc.Withdraw(context.Background(), "key-1", catID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	svc := &CardService{DB: db}
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.UsedCount != 1 || stats.UnusedCount != 2 {
		t.Fatalf("stats unexpected: %+v", stats)
	}
	if len(stats.CategoryStats) != 1 || stats.CategoryStats[0].Count != 3 {
		t.Fatalf("category stats unexpected: %+v", stats.CategoryStats)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := &CardService{DB: db}
	ctx := context.Background()

	// First read auto-creates an empty row.
	s, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.Announcement != nil {
		t.Fatalf("expected empty announcement, got %v", *s.Announcement)
	}

	msg := "maintenance friday 22:00 UTC"
	if _, err := svc.UpdateAnnouncement(ctx, &msg); err != nil {
		t.Fatalf("update: %v", err)
	}
	s, err = svc.Settings(ctx)
	if err != nil {
		t.Fatalf("settings re-read: %v", err)
	}
	if s.Announcement == nil || *s.Announcement != msg {
		t.Fatalf("announcement not persisted: %+v", s)
	}

	// A null announcement clears it.
	if _, err := svc.UpdateAnnouncement(ctx, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	s, err = svc.Settings(ctx)
	if err != nil {
		t.Fatalf("settings after clear: %v", err)
	}
	if s.Announcement != nil {
		t.Fatalf("announcement not cleared: %v", *s.Announcement)
	}
}
