package server

import (
	"io"

	"kbomate/internal/featureflags"
	"kbomate/internal/models"
	"kbomate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListMatePosts handles GET /api/mate/posts
// @Summary List mate posts
// @Description Newest first, 10 per page, optionally for one team
// @Tags mate
// @Produce json
// @Param page query int false "Page"
// @Param team_id query int false "Team filter"
// @Success 200 {object} object{items=[]models.MatePost,total=int,page=int,page_size=int}
// @Router /mate/posts [get]
func (s *Server) ListMatePosts(c *fiber.Ctx) error {
	teamID, err := optionalUintQuery(c, "team_id")
	if err != nil {
		return respondError(c, err)
	}
	page, err := s.mateService.ListPosts(c.UserContext(), pageQuery(c), teamID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetMatePost handles GET /api/mate/posts/:id
// @Summary Get a mate post
// @Tags mate
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.MatePost
// @Failure 404 {object} models.ErrorResponse
// @Router /mate/posts/{id} [get]
func (s *Server) GetMatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.mateService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreateMatePost handles POST /api/mate/posts
// @Summary Create a mate post
// @Tags mate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.MatePostInput true "Post"
// @Success 201 {object} models.MatePost
// @Failure 400 {object} models.ErrorResponse
// @Router /mate/posts [post]
func (s *Server) CreateMatePost(c *fiber.Ctx) error {
	var in service.MatePostInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	post, err := s.mateService.CreatePost(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdateMatePost handles PUT /api/mate/posts/:id
// @Summary Update own mate post
// @Tags mate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.MatePostInput true "Post"
// @Success 200 {object} models.MatePost
// @Failure 403 {object} models.ErrorResponse
// @Router /mate/posts/{id} [put]
func (s *Server) UpdateMatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.MatePostInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	post, err := s.mateService.UpdatePost(c.UserContext(), currentUserID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeleteMatePost handles DELETE /api/mate/posts/:id
// @Summary Delete own mate post and its comments
// @Tags mate
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /mate/posts/{id} [delete]
func (s *Server) DeleteMatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.mateService.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ListMateComments handles GET /api/mate/posts/:id/comments
// @Summary List comments of a post
// @Tags mate
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.MateComment
// @Router /mate/posts/{id}/comments [get]
func (s *Server) ListMateComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

type commentRequest struct {
	Content string `json:"content"`
}

// CreateMateComment handles POST /api/mate/posts/:id/comments
// @Summary Comment on a post
// @Tags mate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.MateComment
// @Router /mate/posts/{id}/comments [post]
func (s *Server) CreateMateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), currentUserID(c), postID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateMateComment handles PUT /api/mate/comments/:id
// @Summary Edit own comment
// @Tags mate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.MateComment
// @Failure 403 {object} models.ErrorResponse
// @Router /mate/comments/{id} [put]
func (s *Server) UpdateMateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteMateComment handles DELETE /api/mate/comments/:id
// @Summary Delete own comment
// @Tags mate
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /mate/comments/{id} [delete]
func (s *Server) DeleteMateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// UploadMateImage handles POST /api/mate/images
// @Summary Upload a mate post image
// @Description Resized to at most 1280px and stored as WebP
// @Tags mate
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} service.UploadedImage
// @Failure 400 {object} models.ErrorResponse
// @Router /mate/images [post]
func (s *Server) UploadMateImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "Failed to read image")
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "Failed to read image")
	}

	uploaded, err := s.imageService.Upload(c.UserContext(), service.UploadImageInput{
		UserID:      currentUserID(c),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

// commentSummaryEnabled writes a 404 when the comment summary flag is off for the caller.
func (s *Server) commentSummaryEnabled(c *fiber.Ctx) bool {
	if s.featureFlags.Enabled(featureflags.CommentSummary, currentUserID(c)) {
		return true
	}
	_ = respondError(c, models.NewNotFoundError("Feature", featureflags.CommentSummary))
	return false
}

// SummarizeMateComments handles POST /api/mate/posts/:id/summary
// @Summary Summarize a post's comments
// @Tags mate
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 201 {object} models.Summary
// @Failure 502 {object} models.ErrorResponse
// @Router /mate/posts/{id}/summary [post]
func (s *Server) SummarizeMateComments(c *fiber.Ctx) error {
	if !s.commentSummaryEnabled(c) {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	summary, err := s.summaryService.SummarizeComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(summary)
}

// GetCommentSummary handles GET /api/mate/posts/:id/summary
// @Summary Latest comment summary of a post
// @Tags mate
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Summary
// @Failure 404 {object} models.ErrorResponse
// @Router /mate/posts/{id}/summary [get]
func (s *Server) GetCommentSummary(c *fiber.Ctx) error {
	if !s.commentSummaryEnabled(c) {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	summary, err := s.summaryService.LatestCommentSummary(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if summary == nil {
		return respondError(c, models.NewNotFoundError("Summary for post", id))
	}
	return c.JSON(summary)
}
