// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them through the
// repositories so seeded rows look exactly like API-created ones.
type Factory struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	opts     Options
	password string

	users    repository.UserRepository
	friends  repository.FriendRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	taxonomy repository.TaxonomyRepository
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	password := DefaultPassword
	// Password handling: allow skipping bcrypt in dev fast mode
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		password = string(hashed)
	}

	return &Factory{
		db:       db,
		faker:    gofakeit.New(seed),
		opts:     opts,
		password: password,
		users:    repository.NewUserRepository(db),
		friends:  repository.NewFriendRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		taxonomy: repository.NewTaxonomyRepository(db),
	}, nil
}

// pick returns a random element of items.
func pick[T any](f *Factory, items []T) T {
	return items[f.faker.Number(0, len(items)-1)]
}

// chance reports true with probability pct/100.
func (f *Factory) chance(pct int) bool {
	return f.faker.Number(1, 100) <= pct
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a sample user. The email is derived
// from the name and seq so it stays unique within a run.
func (f *Factory) CreateUser(ctx context.Context, seq int, overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	birthday := f.faker.DateRange(
		time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 12, 31, 0, 0, 0, 0, time.UTC),
	).Truncate(24 * time.Hour)

	user := &models.User{
		Email:        fmt.Sprintf("%s.%s%d@example.com", slug(first), slug(last), seq),
		Username:     fmt.Sprintf("%s%d", slug(first), seq),
		FirstName:    first,
		LastName:     last,
		Phone:        f.faker.Phone(),
		Birthday:     &birthday,
		Gender:       pick(f, []models.Gender{models.GenderFemale, models.GenderMale, models.GenderUnknown}),
		ProfilePhoto: models.DefaultProfilePhoto,
		EnableNotif:  f.chance(80),
		IsActive:     true,
		Password:     f.password,
	}
	if f.chance(30) {
		user.AndroidRegID = "seed-" + f.faker.UUID()
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow makes follower follow target.
func (f *Factory) Follow(ctx context.Context, follower, target *models.User) error {
	return f.friends.Follow(ctx, follower.ID, target.ID)
}

// CreatePost constructs and persists a post of the given type. Tags and the
// city are created on demand.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, typ models.PostType, title string, tags []string, city string) (*models.Post, error) {
	tagRows, err := f.taxonomy.EnsureTags(ctx, tags)
	if err != nil {
		return nil, err
	}
	cityRow, err := f.taxonomy.EnsureCity(ctx, city)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    author.ID,
		TypeContent: typ,
		Title:       truncate(title, models.MaxTitleLength),
		Description: f.faker.Paragraph(1, f.faker.Number(1, 4), 12, " "),
		CreatedAt:   f.createdAt(),
	}
	if cityRow != nil {
		post.CityID = &cityRow.ID
	}
	if err := f.posts.Create(ctx, post, tagRows); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateNote creates a recommendation by author and attaches it to question.
func (f *Factory) CreateNote(ctx context.Context, author *models.User, question *models.Post, topic Topic, city string) (*models.Post, error) {
	typ, title := models.PostTypePositive, ""
	switch {
	case len(topic.Negative) > 0 && (len(topic.Positive) == 0 || f.chance(30)):
		typ, title = models.PostTypeNegative, pick(f, topic.Negative)
	default:
		title = pick(f, topic.Positive)
	}

	note, err := f.CreatePost(ctx, author, typ, title, f.someTags(topic, 2), city)
	if err != nil {
		return nil, err
	}
	if _, err := f.comments.AttachNote(ctx, author.ID, question.ID, note.ID); err != nil {
		return nil, err
	}
	return note, nil
}

// CreateComment persists a comment, optionally replying to parent.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		AuthorID: author.ID,
		PostID:   post.ID,
		Text:     f.faker.Sentence(f.faker.Number(4, 14)),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		comment.ReplyToID = &parent.AuthorID
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Like records a like from user on post.
func (f *Factory) Like(ctx context.Context, user *models.User, post *models.Post) error {
	return f.posts.Like(ctx, post.ID, user.ID)
}

// FollowPost subscribes user to post.
func (f *Factory) FollowPost(ctx context.Context, user *models.User, post *models.Post) error {
	return f.posts.Follow(ctx, post.ID, user.ID)
}

// SetBestNote marks note as the best answer of question.
func (f *Factory) SetBestNote(ctx context.Context, question, note *models.Post) error {
	return f.posts.SetBestNote(ctx, question.ID, &note.ID)
}

// someTags picks up to n distinct tags of topic.
func (f *Factory) someTags(topic Topic, n int) []string {
	if len(topic.Tags) == 0 {
		return nil
	}
	tags := append([]string(nil), topic.Tags...)
	f.faker.ShuffleStrings(tags)
	return tags[:min(n, len(tags))]
}

// slug keeps the ASCII letters of s, lowercased.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
