package server

import (
	"time"

	"friendmarket/internal/models"
	"friendmarket/internal/service"
)

// AuthorView is the compact user block embedded in posts and comments.
type AuthorView struct {
	Name         string `json:"name"`
	ProfilePhoto string `json:"profile_photo"`
}

// PostView is the wire shape of a post.
type PostView struct {
	ID           uint            `json:"id"`
	TypeContent  models.PostType `json:"typeContent"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Image        *string         `json:"image"`
	Created      time.Time       `json:"created"`
	IsMy         bool            `json:"isMy"`
	CountLike    int             `json:"countLike"`
	IsLike       bool            `json:"isLike"`
	CountComment int             `json:"countComnt"`
	IsFollow     bool            `json:"isFollow"`
	IsBest       bool            `json:"isBest"`
	BestNote     *uint           `json:"best_note,omitempty"`
	Tags         []string        `json:"tags"`
	City         *string         `json:"city"`
	Author       AuthorView      `json:"author"`
}

// ExtendedPostView adds the preview collections. Comments is null for
// questions and Notes is null for recommendations.
type ExtendedPostView struct {
	PostView
	Comments     []CommentView `json:"comments"`
	Notes        []PostView    `json:"notes"`
	Similar      []PostView    `json:"similar"`
	CountSimilar int64         `json:"countSimilar"`
}

// CommentView is the wire shape of a comment. Note is set on comments that
// link a recommendation to a question.
type CommentView struct {
	ID      uint        `json:"id"`
	Created time.Time   `json:"created"`
	Author  AuthorView  `json:"author"`
	IsMy    bool        `json:"isMy"`
	Parent  *uint       `json:"parent"`
	ReplyTo *AuthorView `json:"reply_to"`
	Comment string      `json:"comment"`
	Note    *PostView   `json:"note,omitempty"`
}

// UserView is the public user shape.
type UserView struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Gender       models.Gender `json:"gender"`
	Email        string        `json:"email"`
	ProfilePhoto string        `json:"profile_photo"`
	EnableNotif  bool          `json:"enable_notif"`
}

// FriendView is a user as listed on the friends screen.
type FriendView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profile_photo"`
	IsFollow     bool   `json:"isFollow"`
}

// ProfileView is the caller's own account. The device token is write-only.
type ProfileView struct {
	ID           uint          `json:"id"`
	Email        string        `json:"email"`
	Username     string        `json:"username"`
	Name         string        `json:"name"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Phone        string        `json:"phone"`
	Birthday     *string       `json:"birthday"`
	Gender       models.Gender `json:"gender"`
	ProfilePhoto string        `json:"profile_photo"`
	EnableNotif  bool          `json:"enable_notif"`
	LastLogin    *time.Time    `json:"last_login"`
	Created      time.Time     `json:"created"`
}

// AuthResponse is returned by registration, login and refresh.
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         ProfileView `json:"user"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) authorView(u *models.User) AuthorView {
	return AuthorView{Name: u.FullName(), ProfilePhoto: s.images.URL(u.ProfilePhoto)}
}

// postView renders p for viewerID. bestID is the best note of the question
// in context, if any.
func (s *Server) postView(p *models.Post, viewerID uint, bestID *uint) PostView {
	tags := p.TagNames()
	return PostView{
		ID:           p.ID,
		TypeContent:  p.TypeContent,
		Title:        p.Title,
		Description:  p.Description,
		Image:        optional(s.images.URL(p.Image)),
		Created:      p.CreatedAt,
		IsMy:         viewerID != 0 && p.AuthorID == viewerID,
		CountLike:    p.CountLike,
		IsLike:       p.IsLike,
		CountComment: p.CountComment,
		IsFollow:     p.IsFollow,
		IsBest:       bestID != nil && *bestID == p.ID,
		BestNote:     p.BestNoteID,
		Tags:         tags,
		City:         optional(p.CityName()),
		Author:       s.authorView(&p.Author),
	}
}

func (s *Server) postViews(posts []models.Post, viewerID uint, bestID *uint) []PostView {
	out := make([]PostView, 0, len(posts))
	for i := range posts {
		out = append(out, s.postView(&posts[i], viewerID, bestID))
	}
	return out
}

func (s *Server) extendedView(ext *service.PostExtended, viewerID uint) ExtendedPostView {
	view := ExtendedPostView{
		PostView:     s.postView(ext.Post, viewerID, nil),
		Similar:      s.postViews(ext.Similar, viewerID, nil),
		CountSimilar: ext.CountSimilar,
	}
	if ext.Comments != nil {
		view.Comments = s.commentViews(ext.Comments, viewerID)
	}
	if ext.Notes != nil {
		view.Notes = s.postViews(ext.Notes, viewerID, ext.Post.BestNoteID)
	}
	return view
}

func (s *Server) commentView(cm *models.Comment, viewerID uint) CommentView {
	view := CommentView{
		ID:      cm.ID,
		Created: cm.CreatedAt,
		Author:  s.authorView(&cm.Author),
		IsMy:    viewerID != 0 && cm.AuthorID == viewerID,
		Parent:  cm.ParentID,
		Comment: cm.Text,
	}
	if cm.ReplyTo != nil {
		reply := s.authorView(cm.ReplyTo)
		view.ReplyTo = &reply
	}
	if cm.Note != nil {
		note := s.postView(cm.Note, viewerID, nil)
		view.Note = &note
	}
	return view
}

func (s *Server) commentViews(comments []models.Comment, viewerID uint) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for i := range comments {
		out = append(out, s.commentView(&comments[i], viewerID))
	}
	return out
}

func (s *Server) userView(u *models.User) UserView {
	return UserView{
		ID:           u.ID,
		Name:         u.FullName(),
		Gender:       u.Gender,
		Email:        u.Email,
		ProfilePhoto: s.images.URL(u.ProfilePhoto),
		EnableNotif:  u.EnableNotif,
	}
}

func (s *Server) profileView(u *models.User) ProfileView {
	view := ProfileView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Name:         u.FullName(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Gender:       u.Gender,
		ProfilePhoto: s.images.URL(u.ProfilePhoto),
		EnableNotif:  u.EnableNotif,
		LastLogin:    u.LastLogin,
		Created:      u.CreatedAt,
	}
	if u.Birthday != nil {
		b := u.Birthday.Format(service.BirthdayLayout)
		view.Birthday = &b
	}
	return view
}

func (s *Server) authResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:        res.Token,
		RefreshToken: res.RefreshToken,
		User:         s.profileView(res.User),
	}
}
