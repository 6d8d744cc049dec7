package seed

import (
	"context"
	"fmt"
	"log"

	"friendmarket/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers         int
	NumQuestions     int
	NotesPerQuestion int
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// RandomSeed makes runs reproducible; zero seeds from the clock.
	RandomSeed int64
	// SkipBcrypt stores the plain default password, for tests only.
	SkipBcrypt bool
}

// DefaultOptions is a small but connected data set.
func DefaultOptions() Options {
	return Options{NumUsers: 30, NumQuestions: 60, NotesPerQuestion: 3, MaxDays: 90}
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Follows   int
	Questions int
	Notes     int
	Comments  int
	Likes     int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d follows, %d questions, %d notes, %d comments, %d likes",
		s.Users, s.Follows, s.Questions, s.Notes, s.Comments, s.Likes)
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	catalog *Catalog
	factory *Factory
}

// NewSeeder loads the embedded catalog and prepares a factory.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, opts: opts, catalog: catalog, factory: factory}, nil
}

// Run creates users, a follow graph, questions with attached notes,
// threaded comments, likes and follows.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	f := s.factory

	if s.opts.NumUsers < 2 {
		return sum, fmt.Errorf("need at least 2 users, got %d", s.opts.NumUsers)
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx, i+1)
		if err != nil {
			return sum, fmt.Errorf("create user %d: %w", i+1, err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	for _, u := range users {
		for _, other := range users {
			if other.ID == u.ID || !f.chance(25) {
				continue
			}
			if err := f.Follow(ctx, u, other); err != nil {
				return sum, fmt.Errorf("follow: %w", err)
			}
			sum.Follows++
		}
	}
	log.Printf("✓ %d follows created", sum.Follows)

	for i := 0; i < s.opts.NumQuestions; i++ {
		if err := s.seedQuestion(ctx, users, &sum); err != nil {
			return sum, err
		}
		if (i+1)%25 == 0 {
			log.Printf("Created %d questions...", i+1)
		}
	}

	log.Printf("🎉 Seeding completed: %s", sum)
	return sum, nil
}

func (s *Seeder) seedQuestion(ctx context.Context, users []*models.User, sum *Summary) error {
	f := s.factory
	topic := pick(f, s.catalog.Topics)
	city := ""
	if len(s.catalog.Cities) > 0 && f.chance(70) {
		city = pick(f, s.catalog.Cities)
	}

	author := pick(f, users)
	question, err := f.CreatePost(ctx, author, models.PostTypeQuestion, pick(f, topic.Questions), f.someTags(topic, 3), city)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	sum.Questions++

	var notes []*models.Post
	for n := f.faker.Number(0, s.opts.NotesPerQuestion); n > 0; n-- {
		noteAuthor := pick(f, users)
		note, err := f.CreateNote(ctx, noteAuthor, question, topic, city)
		if err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		notes = append(notes, note)
		sum.Notes++
	}
	if len(notes) > 0 && f.chance(40) {
		if err := f.SetBestNote(ctx, question, pick(f, notes)); err != nil {
			return fmt.Errorf("set best note: %w", err)
		}
	}

	// Discussion happens on one of the recommendations.
	if len(notes) > 0 {
		target := pick(f, notes)
		var first *models.Comment
		for n := f.faker.Number(0, 4); n > 0; n-- {
			var parent *models.Comment
			if first != nil && f.chance(40) {
				parent = first
			}
			c, err := f.CreateComment(ctx, pick(f, users), target, parent)
			if err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			if first == nil {
				first = c
			}
			sum.Comments++
		}
	}

	for _, u := range users {
		if u.ID == author.ID {
			continue
		}
		if f.chance(15) {
			if err := f.Like(ctx, u, question); err != nil {
				return fmt.Errorf("like: %w", err)
			}
			sum.Likes++
		}
		if f.chance(5) {
			if err := f.FollowPost(ctx, u, question); err != nil {
				return fmt.Errorf("follow post: %w", err)
			}
		}
	}
	return nil
}

// clearOrder lists tables children first so foreign keys never block a delete.
var clearOrder = []string{
	"comments", "post_tags", "post_likes", "post_follows", "post_views",
	"friends", "posts", "tags", "cities", "users",
}

// ClearAll removes every row the seeder can create.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE posts SET best_note_id = NULL").Error; err != nil {
			return fmt.Errorf("clear best notes: %w", err)
		}
		for _, table := range clearOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
