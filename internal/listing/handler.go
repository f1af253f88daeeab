package listing

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mrJTY/bookit/internal/auth"
	"github.com/mrJTY/bookit/internal/rating"
)

type Handler struct {
	repo        Repository
	ratingRepo  rating.Repository
	resultLimit int
}

func NewHandler(db *sqlx.DB, resultLimit int) *Handler {
	return &Handler{
		repo:        NewRepository(db),
		ratingRepo:  rating.NewRepository(db),
		resultLimit: resultLimit,
	}
}

func (h *Handler) withRating(c *gin.Context, l *Listing) (*ListingWithRating, error) {
	avg, err := h.ratingRepo.AverageForListing(c.Request.Context(), l.ID)
	if err != nil {
		return nil, err
	}
	return &ListingWithRating{Listing: *l, AvgRating: avg}, nil
}

// CreateListing godoc
// @Summary      Create listing
// @Description  Creates a listing owned by the caller. Unknown categories fall back to "other".
// @Tags         listings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateListingRequest  true  "Listing data"
// @Success      201      {object}  ListingWithRating
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /listings [post]
func (h *Handler) CreateListing(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	username, _ := auth.GetUsername(c)

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taken, err := h.repo.NameExists(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Listing name already in use"})
		return
	}

	listing, err := h.repo.Create(
		c.Request.Context(),
		req.Name,
		req.Address,
		NormalizeCategory(req.Category),
		req.Description,
		userID,
		username,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, ListingWithRating{Listing: *listing})
}

// GetListing godoc
// @Summary      Get listing by id
// @Tags         listings
// @Security     BearerAuth
// @Produce      json
// @Param        listingID  path      int  true  "Listing ID"
// @Success      200        {object}  ListingWithRating
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /listings/{listingID} [get]
func (h *Handler) GetListing(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Param("listingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.repo.GetByID(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	decorated, err := h.withRating(c, listing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute average rating"})
		return
	}

	c.JSON(http.StatusOK, decorated)
}

// UpdateListing godoc
// @Summary      Update listing
// @Description  Updates a listing. Only the owner may update.
// @Tags         listings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        listingID  path      int                   true  "Listing ID"
// @Param        request    body      UpdateListingRequest  true  "Listing data"
// @Success      200        {object}  ListingWithRating
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /listings/{listingID} [put]
func (h *Handler) UpdateListing(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listingID, err := strconv.Atoi(c.Param("listingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	if existing.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own listings"})
		return
	}

	listing, err := h.repo.Update(
		c.Request.Context(),
		listingID,
		req.Name,
		req.Address,
		NormalizeCategory(req.Category),
		req.Description,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		return
	}

	decorated, err := h.withRating(c, listing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute average rating"})
		return
	}

	c.JSON(http.StatusOK, decorated)
}

// DeleteListing godoc
// @Summary      Delete listing
// @Description  Deletes a listing and its availabilities. Only the owner may delete. Listings with live bookings are kept.
// @Tags         listings
// @Security     BearerAuth
// @Produce      json
// @Param        listingID  path      int  true  "Listing ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /listings/{listingID} [delete]
func (h *Handler) DeleteListing(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listingID, err := strconv.Atoi(c.Param("listingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	if existing.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own listings"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), listingID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			c.JSON(http.StatusConflict, gin.H{"error": "Listing has active bookings"})
			return
		}
		if errors.Is(err, ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

// SearchListings godoc
// @Summary      Search listings
// @Description  Keyword search over name, description and address with optional category and availability-window filters.
// @Tags         listings
// @Security     BearerAuth
// @Produce      json
// @Param        search_query  query     string  false  "Keyword"
// @Param        categories    query     string  false  "Comma separated category list"
// @Param        start_time    query     string  false  "Window start (RFC3339)"
// @Param        end_time      query     string  false  "Window end (RFC3339)"
// @Success      200           {object}  map[string][]ListingWithRating
// @Failure      400           {object}  api.ErrorResponse
// @Failure      500           {object}  api.ErrorResponse
// @Router       /listings [get]
func (h *Handler) SearchListings(c *gin.Context) {
	filter := SearchFilter{
		Keyword: c.Query("search_query"),
		Limit:   h.resultLimit,
	}

	if raw := c.Query("categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			filter.Categories = append(filter.Categories, NormalizeCategory(strings.TrimSpace(cat)))
		}
	}

	startRaw, endRaw := c.Query("start_time"), c.Query("end_time")
	if startRaw != "" && endRaw != "" {
		start, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time format, use RFC3339"})
			return
		}
		end, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time format, use RFC3339"})
			return
		}
		filter.StartTime, filter.EndTime = start, end
	}

	listings, err := h.repo.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search listings"})
		return
	}

	results := make([]ListingWithRating, 0, len(listings))
	for i := range listings {
		decorated, err := h.withRating(c, &listings[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute average rating"})
			return
		}
		results = append(results, *decorated)
	}

	c.JSON(http.StatusOK, gin.H{"listings": results})
}

// MyListings godoc
// @Summary      List my listings
// @Tags         listings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]Listing
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /listings/mylistings [get]
func (h *Handler) MyListings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listings, err := h.repo.ListByOwner(c.Request.Context(), userID, h.resultLimit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mylistings": listings})
}
