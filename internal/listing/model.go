package listing

import "time"

// Categories a listing may advertise under. Anything else is stored as "other".
var Categories = []string{"entertainment", "sport", "accommodation", "healthcare", "other"}

type Listing struct {
	ID          int       `db:"id" json:"listing_id"`
	Name        string    `db:"name" json:"listing_name"`
	Address     string    `db:"address" json:"address"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	UserID      int       `db:"user_id" json:"user_id"`
	Username    string    `db:"username" json:"username"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ListingWithRating decorates a listing with its average rating for responses.
type ListingWithRating struct {
	Listing
	AvgRating float64 `json:"avg_rating"`
}

type CreateListingRequest struct {
	Name        string `json:"listing_name" binding:"required,min=1,max=256"`
	Address     string `json:"address" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
}

type UpdateListingRequest struct {
	Name        string `json:"listing_name" binding:"required,min=1,max=256"`
	Address     string `json:"address" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
}

// NormalizeCategory maps free-form input onto the fixed category set.
func NormalizeCategory(category string) string {
	for _, c := range Categories {
		if c == category {
			return c
		}
	}
	return "other"
}

// SearchFilter narrows a listing search. Zero values mean "no constraint".
type SearchFilter struct {
	Keyword    string
	Categories []string
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
}
