package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

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

// CreateAvailability godoc
// @Summary      Publish a time slot
// @Description  Creates an open time slot under a listing. Only the listing owner may publish slots.
// @Tags         availabilities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateAvailabilityRequest  true  "Slot data"
// @Success      201      {object}  Availability
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /availabilities [post]
func (h *Handler) CreateAvailability(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	owner, err := h.repo.ListingOwner(c.Request.Context(), req.ListingID)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if owner != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only publish slots for your own listings"})
		return
	}

	avail, err := h.repo.Create(c.Request.Context(), req.ListingID, req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create availability"})
		return
	}

	c.JSON(http.StatusCreated, avail)
}

// ListAvailabilities godoc
// @Summary      List upcoming slots for a listing
// @Description  Returns the listing's slots that have not ended yet, soonest first. In-progress slots are included.
// @Tags         availabilities
// @Security     BearerAuth
// @Produce      json
// @Param        listing_id  query     int  true  "Listing ID"
// @Success      200         {object}  map[string][]Availability
// @Failure      400         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /availabilities [get]
func (h *Handler) ListAvailabilities(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Query("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing_id"})
		return
	}

	avails, err := h.repo.ListByListing(c.Request.Context(), listingID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availabilities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"availabilities": avails})
}

// UpdateAvailability godoc
// @Summary      Update a slot
// @Description  Moves a slot's time window. Only the listing owner may update, and only while the slot is not booked.
// @Tags         availabilities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        availabilityID  path      int                        true  "Availability ID"
// @Param        request         body      UpdateAvailabilityRequest  true  "Slot data"
// @Success      200             {object}  Availability
// @Failure      400             {object}  api.ErrorResponse
// @Failure      403             {object}  api.ErrorResponse
// @Failure      404             {object}  api.ErrorResponse
// @Failure      409             {object}  api.ErrorResponse
// @Router       /availabilities/{availabilityID} [put]
func (h *Handler) UpdateAvailability(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	availabilityID, err := strconv.Atoi(c.Param("availabilityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availability ID"})
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), availabilityID)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Availability not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	owner, err := h.repo.ListingOwner(c.Request.Context(), existing.ListingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if owner != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update slots on your own listings"})
		return
	}

	if !existing.IsAvailable {
		c.JSON(http.StatusConflict, gin.H{"error": "Slot is booked and cannot be moved"})
		return
	}

	avail, err := h.repo.Update(c.Request.Context(), availabilityID, req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability"})
		return
	}

	c.JSON(http.StatusOK, avail)
}

// DeleteAvailability godoc
// @Summary      Delete a slot
// @Description  Removes a slot. Only the listing owner may delete. Slots held by a booking are kept.
// @Tags         availabilities
// @Security     BearerAuth
// @Produce      json
// @Param        availabilityID  path      int  true  "Availability ID"
// @Success      200             {object}  api.MessageResponse
// @Failure      400             {object}  api.ErrorResponse
// @Failure      403             {object}  api.ErrorResponse
// @Failure      404             {object}  api.ErrorResponse
// @Failure      409             {object}  api.ErrorResponse
// @Router       /availabilities/{availabilityID} [delete]
func (h *Handler) DeleteAvailability(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	availabilityID, err := strconv.Atoi(c.Param("availabilityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availability ID"})
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), availabilityID)
	if err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Availability not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	owner, err := h.repo.ListingOwner(c.Request.Context(), existing.ListingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if owner != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete slots on your own listings"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), availabilityID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is held by a booking"})
			return
		}
		if errors.Is(err, ErrAvailabilityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Availability not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability deleted"})
}
