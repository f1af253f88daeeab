package server

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrJTY/bookit/internal/availability"
)

// RegisterValidations attaches custom request validations to gin's binding
// engine so ShouldBindJSON rejects malformed payloads before any handler
// logic runs. Called once at server construction.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterStructValidation(slotWindowValidation,
		availability.CreateAvailabilityRequest{},
		availability.UpdateAvailabilityRequest{},
	)
}

// slotWindowValidation rejects slot payloads whose window is empty or
// inverted. end_time must be strictly after start_time.
func slotWindowValidation(sl validator.StructLevel) {
	switch req := sl.Current().Interface().(type) {
	case availability.CreateAvailabilityRequest:
		if !req.EndTime.After(req.StartTime) {
			sl.ReportError(req.EndTime, "EndTime", "end_time", "gtfield", "StartTime")
		}
	case availability.UpdateAvailabilityRequest:
		if !req.EndTime.After(req.StartTime) {
			sl.ReportError(req.EndTime, "EndTime", "end_time", "gtfield", "StartTime")
		}
	}
}
