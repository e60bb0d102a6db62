package storage

import (
	"context"
	"testing"
)

func openTestDB(t *testing.T) TurnRepository {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewTurnRepository(db)
}

func TestSaveAndListBySession(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	turns := []*VoiceTurn{
		{SessionID: "s1", Transcript: "show my medications", CaptureStrategy: "platform-native",
			Reply: "Your medications are listed under the Medications tab.", SpeechStrategy: "cloud"},
		{SessionID: "s1", Transcript: "when is my next appointment", CaptureStrategy: "platform-native",
			Reply: "Tuesday at nine.", SpeechStrategy: "platform-native"},
		{SessionID: "s2", Transcript: "lab results", CaptureStrategy: "cloud",
			Reply: "No new results.", SpeechStrategy: "cloud"},
	}
	for _, turn := range turns {
		if err := repo.Save(ctx, turn); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := repo.ListBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	if got[0].Transcript != "show my medications" {
		t.Errorf("turns out of order: %q first", got[0].Transcript)
	}
	if got[0].CreatedAt.IsZero() {
		t.Errorf("CreatedAt not populated")
	}
}

func TestRecentLimitsAndOrders(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	for _, transcript := range []string{"first", "second", "third"} {
		if err := repo.Save(ctx, &VoiceTurn{SessionID: "s1", Transcript: transcript}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	if got[0].Transcript != "third" {
		t.Errorf("newest first expected, got %q", got[0].Transcript)
	}
}

func TestListBySessionEmpty(t *testing.T) {
	repo := openTestDB(t)
	got, err := repo.ListBySession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no turns, got %d", len(got))
	}
}
