package server

import (
	"fmt"

	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a create and carries the stored post.
type CreatedResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PostResponse wraps a single post.
type PostResponse struct {
	Data interface{} `json:"data"`
}

// GetPosts handles GET /posts
// @Summary List posts
// @Description One page of three posts, optionally filtered by exact status and a case-insensitive title substring.
// @Tags posts
// @Produce json
// @Param status query string false "Exact status"
// @Param keywords query string false "Title substring"
// @Param page query int false "1-based page; invalid values mean 1"
// @Success 200 {object} service.PostPage
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Status:   c.Query("status"),
		Keywords: c.Query("keywords"),
		Page:     service.ParsePage(c.Query("page")),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(PostResponse{Data: post})
}

// CreatePost handles POST /posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body service.PostInput true "Post"
// @Success 200 {object} CreatedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(CreatedResponse{Message: "Post has been created.", Data: post})
}

// UpdatePost handles PUT /posts/:id
// @Summary Replace a post
// @Description Fields missing from the body are cleared.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param post body service.PostInput true "Post"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.postService.UpdatePost(c.UserContext(), id, req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: fmt.Sprintf("Post %d has been updated.", id)})
}

// PatchPost handles PATCH /posts/:id
// @Summary Update some fields of a post
// @Description Only fields present in the body are written. An explicit null category clears it.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param post body service.PatchPostInput true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) PatchPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.PatchPostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.postService.PatchPost(c.UserContext(), id, req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: fmt.Sprintf("Post %d has been updated.", id)})
}

// DeletePost handles DELETE /posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: fmt.Sprintf("Post %d has been deleted.", id)})
}
