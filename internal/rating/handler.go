package rating

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/mrJTY/bookit/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo: NewRepository(db),
	}
}

// CreateRating godoc
// @Summary      Rate a booking
// @Description  Creates a rating for a booking owned by the caller.
// @Tags         ratings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRatingRequest  true  "Rating data"
// @Success      201      {object}  Rating
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /ratings [post]
func (h *Handler) CreateRating(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := h.repo.BookingOwner(c.Request.Context(), req.BookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if owner != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only rate your own bookings"})
		return
	}

	rating, err := h.repo.Create(c.Request.Context(), req.BookingID, userID, req.Rating, req.Comment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rating"})
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// ListRatings godoc
// @Summary      List ratings for a listing
// @Tags         ratings
// @Security     BearerAuth
// @Produce      json
// @Param        listing_id  query     int  true  "Listing ID"
// @Success      200         {object}  map[string]interface{}
// @Failure      400         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /ratings [get]
func (h *Handler) ListRatings(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Query("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing_id"})
		return
	}

	ratings, err := h.repo.ListByListing(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ratings"})
		return
	}

	avg, err := h.repo.AverageForListing(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute average rating"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings, "avg_rating": avg})
}
