package api

type ErrorResponse struct {
	Error string `json:"error" example:"Slot is no longer available"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Booking cancelled"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}