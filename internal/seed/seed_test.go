package seed

import (
	"context"
	"strings"
	"testing"

	"friendmarket/internal/models"
	"friendmarket/internal/testutil"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(c.Cities) == 0 {
		t.Fatalf("expected cities in catalog")
	}
	tags := c.Tags()
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			t.Fatalf("duplicate tag %q", tag)
		}
		seen[tag] = true
	}
	if !seen["food"] {
		t.Fatalf("expected food tag, got %v", tags)
	}
}

func TestParseCatalog_RejectsEmptyTopic(t *testing.T) {
	_, err := ParseCatalog([]byte("topics:\n  - name: empty\n    tags: [x]\n"))
	if err == nil {
		t.Fatalf("expected error for topic without questions")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Fatalf("error should name the topic: %v", err)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Anna":     "anna",
		"O'Keefe":  "okeefe",
		"Zoë-Lynn": "zolynn",
		"---":      "user",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeeder_RunBuildsConnectedData(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	s, err := NewSeeder(db, Options{
		NumUsers:         6,
		NumQuestions:     8,
		NotesPerQuestion: 2,
		RandomSeed:       42,
		SkipBcrypt:       true,
	})
	if err != nil {
		t.Fatalf("new seeder: %v", err)
	}

	sum, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Users != 6 || sum.Questions != 8 {
		t.Fatalf("unexpected summary: %s", sum)
	}

	var questions, notes int64
	db.Model(&models.Post{}).Where("type = ?", models.PostTypeQuestion).Count(&questions)
	db.Model(&models.Post{}).Where("type <> ?", models.PostTypeQuestion).Count(&notes)
	if questions != int64(sum.Questions) || notes != int64(sum.Notes) {
		t.Fatalf("db has %d questions and %d notes, summary says %s", questions, notes, sum)
	}

	var links int64
	db.Model(&models.Comment{}).Where("note_id IS NOT NULL").Count(&links)
	if links != int64(sum.Notes) {
		t.Fatalf("every note should be attached once: %d links for %d notes", links, sum.Notes)
	}

	var badBest int64
	db.Model(&models.Post{}).
		Where("best_note_id IS NOT NULL AND best_note_id NOT IN (SELECT note_id FROM comments WHERE post_id = posts.id AND note_id IS NOT NULL)").
		Count(&badBest)
	if badBest != 0 {
		t.Fatalf("%d questions point at a best note that is not attached", badBest)
	}
}

func TestSeeder_RequiresTwoUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{NumUsers: 1, SkipBcrypt: true})
	if err != nil {
		t.Fatalf("new seeder: %v", err)
	}
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatalf("expected error with a single user")
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s, err := NewSeeder(db, Options{NumUsers: 4, NumQuestions: 5, NotesPerQuestion: 2, RandomSeed: 7, SkipBcrypt: true})
	if err != nil {
		t.Fatalf("new seeder: %v", err)
	}
	if _, err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Tag{}, &models.City{}} {
		var n int64
		db.Model(model).Count(&n)
		if n != 0 {
			t.Fatalf("%T still has %d rows", model, n)
		}
	}
}
