package follower

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/mrJTY/bookit/internal/auth"
	"github.com/mrJTY/bookit/internal/metrics"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo: NewRepository(db),
	}
}

// Follow godoc
// @Summary      Follow a user
// @Tags         followers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      FollowRequest  true  "User to follow"
// @Success      201      {object}  Follower
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /followers/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	influencerID, err := h.repo.UserIDByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if influencerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	edge, err := h.repo.Follow(c.Request.Context(), influencerID, userID)
	if err != nil {
		if errors.Is(err, ErrAlreadyFollowing) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already following this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	metrics.RecordFollow("follow")
	c.JSON(http.StatusCreated, edge)
}

// Unfollow godoc
// @Summary      Unfollow a user
// @Tags         followers
// @Security     BearerAuth
// @Produce      json
// @Param        username  path      string  true  "Username to unfollow"
// @Success      200       {object}  api.MessageResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /followers/unfollow/{username} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	influencerID, err := h.repo.UserIDByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := h.repo.Unfollow(c.Request.Context(), influencerID, userID); err != nil {
		if errors.Is(err, ErrNotFollowing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "You are not following this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}

	metrics.RecordFollow("unfollow")
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

// MyFollowers godoc
// @Summary      List my followers
// @Tags         followers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]FollowerProfile
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /followers/myfollowers [get]
func (h *Handler) MyFollowers(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	followers, err := h.repo.ListFollowers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"myfollowers": followers})
}
