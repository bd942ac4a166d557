package service

import (
	"context"
	"errors"
	"time"

	"kbomate/internal/models"
	"kbomate/internal/notifications"
	"kbomate/internal/observability"
	"kbomate/internal/repository"
)

const (
	maxMateTitleRunes   = 100
	maxMateContentRunes = 5000
	maxMateLocation     = 200
	minParticipants     = 2
	maxParticipants     = 20
	maxCommentRunes     = 1000
)

// gameDateLayouts are tried in order; the second is what datetime-local inputs send.
var gameDateLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

// ErrPostStillExists is returned when the final check of a delete finds the post.
var ErrPostStillExists = errors.New("post still exists after delete")

type MateService struct {
	posts    repository.MatePostRepository
	comments repository.MateCommentRepository
	teams    repository.TeamRepository
}

func NewMateService(
	posts repository.MatePostRepository,
	comments repository.MateCommentRepository,
	teams repository.TeamRepository,
) *MateService {
	return &MateService{posts: posts, comments: comments, teams: teams}
}

// MatePostInput is the editable part of a mate post.
type MatePostInput struct {
	TeamID          uint    `json:"team_id"`
	GameDate        string  `json:"game_date"`
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	MaxParticipants int     `json:"max_participants"`
	ImageURL        *string `json:"image_url"`
	Location        string  `json:"location"`
}

type validMatePost struct {
	gameDate time.Time
	title    string
	content  string
	maxP     int
	imageURL *string
	location string
}

// ParseGameDate accepts RFC3339 and the zone-less "YYYY-MM-DDTHH:MM" form, read as KST.
func ParseGameDate(raw string) (time.Time, error) {
	raw = trimmed(raw)
	if t, err := time.Parse(gameDateLayouts[0], raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(gameDateLayouts[1], raw, KST)
	if err != nil {
		return time.Time{}, models.NewValidationError("game_date must be RFC3339 or YYYY-MM-DDTHH:MM")
	}
	return t, nil
}

func (s *MateService) validate(ctx context.Context, in MatePostInput) (*validMatePost, error) {
	out := &validMatePost{
		title:    trimmed(in.Title),
		content:  trimmed(in.Content),
		maxP:     in.MaxParticipants,
		location: trimmed(in.Location),
	}
	if out.title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if runeLen(out.title) > maxMateTitleRunes {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}
	if out.content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if runeLen(out.content) > maxMateContentRunes {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}
	if out.maxP == 0 {
		out.maxP = minParticipants
	}
	if out.maxP < minParticipants || out.maxP > maxParticipants {
		return nil, models.NewValidationError("max_participants must be between 2 and 20")
	}
	if runeLen(out.location) > maxMateLocation {
		return nil, models.NewValidationError("Location too long (max 200 characters)")
	}
	if in.ImageURL != nil && trimmed(*in.ImageURL) != "" {
		u := trimmed(*in.ImageURL)
		out.imageURL = &u
	}

	gameDate, err := ParseGameDate(in.GameDate)
	if err != nil {
		return nil, err
	}
	out.gameDate = gameDate

	if in.TeamID == 0 {
		return nil, models.NewValidationError("team_id is required")
	}
	ok, err := s.teams.Exists(ctx, in.TeamID)
	if err != nil {
		return nil, wrap(err)
	}
	if !ok {
		return nil, models.NewValidationError("Unknown team")
	}
	return out, nil
}

// ListPosts returns page (1-based) of live posts, newest first, optionally for one team.
func (s *MateService) ListPosts(ctx context.Context, page int, teamID *uint) (*Page[models.MatePost], error) {
	page = normalizePage(page)
	posts, total, err := s.posts.List(ctx, teamID, page, MatePageSize)
	if err != nil {
		return nil, wrap(err)
	}
	return &Page[models.MatePost]{Items: posts, Total: total, Page: page, PageSize: MatePageSize}, nil
}

func (s *MateService) GetPost(ctx context.Context, id uint) (*models.MatePost, error) {
	return s.posts.GetByID(ctx, id)
}

// CreatePost stores a new post. The author counts as the first participant.
func (s *MateService) CreatePost(ctx context.Context, userID uint, in MatePostInput) (*models.MatePost, error) {
	v, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	post := &models.MatePost{
		UserID:              userID,
		TeamID:              in.TeamID,
		GameDate:            v.gameDate,
		Title:               v.title,
		Content:             v.content,
		MaxParticipants:     v.maxP,
		CurrentParticipants: 1,
		ImageURL:            v.imageURL,
		Location:            v.location,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, wrap(err)
	}
	observability.MateActions.WithLabelValues("post_create").Inc()
	return s.posts.GetByID(ctx, post.ID)
}

// UpdatePost rewrites the post. The write is filtered by owner, so a non-owner changes nothing.
func (s *MateService) UpdatePost(ctx context.Context, userID, id uint, in MatePostInput) (*models.MatePost, error) {
	v, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	n, err := s.posts.UpdateOwned(ctx, id, userID, map[string]any{
		"team_id":          in.TeamID,
		"game_date":        v.gameDate,
		"title":            v.title,
		"content":          v.content,
		"max_participants": v.maxP,
		"image_url":        v.imageURL,
		"location":         v.location,
	})
	if err != nil {
		return nil, wrap(err)
	}
	if n == 0 {
		return nil, s.notOwned(ctx, id, "post")
	}
	observability.MateActions.WithLabelValues("post_update").Inc()
	return s.posts.GetByID(ctx, id)
}

// notOwned tells a missing post apart from one the caller may not touch.
func (s *MateService) notOwned(ctx context.Context, postID uint, what string) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return wrap(err)
	}
	if !ok {
		return models.NewNotFoundError("MatePost", postID)
	}
	return models.NewForbiddenError("You can only modify your own " + what)
}

// DeletePost removes the post and its comments in three separate statements:
// comments by post, the post filtered by owner, then a re-check that the post is gone.
// The steps are not wrapped in a transaction.
func (s *MateService) DeletePost(ctx context.Context, userID, id uint) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return wrap(err)
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own post")
	}

	if err := s.comments.DeleteByPost(ctx, id); err != nil {
		return wrap(err)
	}
	if _, err := s.posts.DeleteOwned(ctx, id, userID); err != nil {
		return wrap(err)
	}

	still, err := s.posts.Exists(ctx, id)
	if err != nil {
		return wrap(err)
	}
	if still {
		return models.NewInternalError(ErrPostStillExists)
	}
	observability.MateActions.WithLabelValues("post_delete").Inc()
	return nil
}

// MateCommentService handles replies on mate posts.
type MateCommentService struct {
	comments repository.MateCommentRepository
	posts    repository.MatePostRepository
	events   EventPublisher
}

func NewMateCommentService(
	comments repository.MateCommentRepository,
	posts repository.MatePostRepository,
	events EventPublisher,
) *MateCommentService {
	return &MateCommentService{comments: comments, posts: posts, events: events}
}

func validateComment(content string) (string, error) {
	content = trimmed(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if runeLen(content) > maxCommentRunes {
		return "", models.NewValidationError("Comment too long (max 1000 characters)")
	}
	return content, nil
}

// ListComments returns live comments on a post, oldest first.
func (s *MateCommentService) ListComments(ctx context.Context, postID uint) ([]models.MateComment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, wrap(err)
	}
	return s.comments.ListByPost(ctx, postID)
}

// CreateComment adds a comment and pushes a notification to the post author.
func (s *MateCommentService) CreateComment(ctx context.Context, userID, postID uint, content string) (*models.MateComment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrap(err)
	}

	comment := &models.MateComment{PostID: postID, UserID: userID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, wrap(err)
	}
	observability.MateActions.WithLabelValues("comment_create").Inc()

	if s.events != nil && post.UserID != userID {
		publish(ctx, func() error {
			return s.events.NotifyUser(ctx, post.UserID, notifications.EventMateComment, map[string]any{
				"post_id":    postID,
				"post_title": post.Title,
				"comment_id": comment.ID,
				"preview":    truncateRunes(content, 50),
			})
		})
	}
	return comment, nil
}

// UpdateComment is rejected unless userID wrote the comment.
func (s *MateCommentService) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.MateComment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	n, err := s.comments.UpdateOwned(ctx, commentID, userID, content)
	if err != nil {
		return nil, wrap(err)
	}
	if n == 0 {
		return nil, s.commentNotOwned(ctx, commentID)
	}
	observability.MateActions.WithLabelValues("comment_update").Inc()
	return s.comments.GetByID(ctx, commentID)
}

func (s *MateCommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	n, err := s.comments.DeleteOwned(ctx, commentID, userID)
	if err != nil {
		return wrap(err)
	}
	if n == 0 {
		return s.commentNotOwned(ctx, commentID)
	}
	observability.MateActions.WithLabelValues("comment_delete").Inc()
	return nil
}

func (s *MateCommentService) commentNotOwned(ctx context.Context, commentID uint) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return wrap(err)
	}
	return models.NewForbiddenError("You can only modify your own comment")
}
