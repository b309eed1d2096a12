package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/growgram/growgram-api/internal/domain/entity"
	"github.com/growgram/growgram-api/internal/handler/dto"
	"github.com/growgram/growgram-api/internal/handler/helper"
	"github.com/growgram/growgram-api/internal/middleware"
	"github.com/growgram/growgram-api/internal/service"
)

// FeedHandler serves the content feed and the publish endpoints.
type FeedHandler struct {
	feedService *service.FeedService
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// CreatePostRequest is the publish payload.
type CreatePostRequest struct {
	Caption   string `json:"caption" binding:"required,max=2000"`
	MediaURL  string `json:"media_url" binding:"omitempty,url,max=500"`
	MinAge    int    `json:"min_age" binding:"omitempty,min=0,max=120"`
	AdultOnly bool   `json:"adult_only"`
	Audience  string `json:"audience" binding:"omitempty,max=20"`
	Tags      string `json:"tags" binding:"omitempty,max=500"`
}

// ListFeed returns recent posts filtered to the viewer's tier. The tier is
// attached by the soft gate; guests see unrestricted content only.
func (h *FeedHandler) ListFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tier := middleware.TierFromContext(c)

	posts, err := h.feedService.ListFeed(c.Request.Context(), tier, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &dto.FeedResponse{
		Posts:      helper.PostsToDTOs(posts),
		ViewerTier: string(tier),
		Limit:      limit,
		Offset:     offset,
	})
}

// CreatePost publishes a regular post. Adult-only metadata on this path is
// rejected by the service unless the author is a verified adult.
func (h *FeedHandler) CreatePost(c *gin.Context) {
	h.createPost(c, false)
}

// CreateAdultPost publishes into the 18+ area. The route sits behind the hard
// gate, so the author tier here is always EIGHTEEN_VERIFIED.
func (h *FeedHandler) CreateAdultPost(c *gin.Context) {
	h.createPost(c, true)
}

func (h *FeedHandler) createPost(c *gin.Context, forceAdult bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "validation_error", "details": err.Error()})
		return
	}

	meta := entity.ContentAgeMeta{
		MinAge:    req.MinAge,
		AdultOnly: req.AdultOnly || forceAdult,
		Audience:  entity.Audience(req.Audience),
		Tags:      req.Tags,
	}

	post, err := h.feedService.CreatePost(c.Request.Context(), userID, req.Caption, req.MediaURL, meta, middleware.TierFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}
