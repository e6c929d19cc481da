package validator

import (
	"errors"
	"fmt"
	"ridepoint/pkg/dates"
	"ridepoint/pkg/logger"
	"ridepoint/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("isodate", validateIsoDate); err != nil {
		log.Fatal("Failed to register 'isodate' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateIsoDate(fl validator.FieldLevel) bool {
	_, err := dates.Parse(fl.Field().String())
	return err == nil
}

// ValidateRequest checks a reservation request, including the cross-field
// rules struct tags cannot express: exactly one of end_date and duration must
// be set, an explicit end date must not precede the start date, and an hourly
// duration must fit in one calendar day.
func (v *BookingValidator) ValidateRequest(req *model.ReservationRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	hasEnd := req.EndDate != ""
	hasDuration := req.Duration != nil

	if hasEnd == hasDuration {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "exactly one of end_date and duration must be provided",
			},
		}
	}

	if hasEnd {
		start, _ := dates.Parse(req.StartDate)
		end, err := dates.Parse(req.EndDate)
		if err != nil {
			return ValidationErrors{
				ValidationError{
					Field:   "EndDate",
					Message: "end_date must be a calendar day in YYYY-MM-DD format",
				},
			}
		}
		if end.Before(start) {
			return ValidationErrors{
				ValidationError{
					Field:   "EndDate",
					Message: "end_date must not be before start_date",
				},
			}
		}
	}

	if hasDuration && req.Duration.Unit == model.UnitHours && req.Duration.Quantity > 24 {
		return ValidationErrors{
			ValidationError{
				Field:   "Duration",
				Message: "hourly rentals cannot exceed 24 hours",
			},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateBooking(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	start, _ := dates.Parse(booking.StartDate)
	end, _ := dates.Parse(booking.EndDate)
	if end.Before(start) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "end_date must not be before start_date",
			},
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "isodate":
			message = fmt.Sprintf("%s must be a calendar day in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
