package handler

import (
	"net/http"
	"time"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var postListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"title":     "title",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"title", "content"},
	FilterFields: map[string]string{
		"filter.published": "published",
	},
}

// PostRequest is the create/update payload for blog posts. Content is
// stored as HTML produced by the editor.
type PostRequest struct {
	Title      string           `json:"title" validate:"required"`
	Content    string           `json:"content" validate:"required"`
	Tags       model.StringList `json:"tags"`
	CoverImage string           `json:"coverImage"`
	Published  *bool            `json:"published"`
}

// ListPosts returns a page of blog posts
func ListPosts(c echo.Context) error {
	log := logger.FromEcho(c)

	var posts []model.Post
	page, err := query.Paginate(c, database.GetDB().Model(&model.Post{}), postListOptions, &posts)
	if err != nil {
		log.Error("Failed to list posts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve posts"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetPost returns a single post addressed by slug
func GetPost(c echo.Context) error {
	var post model.Post
	result := database.GetDB().Where("slug = ?", c.Param("slug")).First(&post)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost creates a blog post, deriving the slug from the title
func CreatePost(c echo.Context) error {
	log := logger.FromEcho(c)

	var req PostRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	slug := slugify(req.Title)
	var count int64
	database.GetDB().Model(&model.Post{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		slug = uniqueSlug(req.Title)
	}

	post := model.Post{
		Title:      req.Title,
		Slug:       slug,
		Content:    req.Content,
		Tags:       req.Tags,
		CoverImage: req.CoverImage,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	defer prometheus.TrackDBOperation("insert_post")(time.Now())
	if result := database.GetDB().Create(&post); result.Error != nil {
		log.Error("Failed to create post", zap.String("title", req.Title), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create post"})
	}

	log.Info("Post created", zap.Uint("post_id", post.ID), zap.String("slug", post.Slug))
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost updates a post in place. The slug is stable across edits so
// published links keep working.
func UpdatePost(c echo.Context) error {
	log := logger.FromEcho(c)
	slug := c.Param("slug")

	var req PostRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var post model.Post
	if result := database.GetDB().Where("slug = ?", slug).First(&post); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Tags = req.Tags
	post.CoverImage = req.CoverImage
	if req.Published != nil {
		post.Published = *req.Published
	}

	if result := database.GetDB().Save(&post); result.Error != nil {
		log.Error("Failed to update post", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update post"})
	}

	log.Info("Post updated", zap.String("slug", slug))
	return c.JSON(http.StatusOK, post)
}

// DeletePost soft deletes a post
func DeletePost(c echo.Context) error {
	result := database.GetDB().Where("slug = ?", c.Param("slug")).Delete(&model.Post{})
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete post"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "post not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post deleted successfully"})
}
