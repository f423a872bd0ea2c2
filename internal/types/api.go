package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SearchEventsRequest is the body of an events search call.
type SearchEventsRequest struct {
	City  string `json:"city" validate:"required,min=1,max=100"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Style string `json:"style" validate:"omitempty,max=50"`
	// Styles optionally narrows results to several styles at once.
	Styles []string `json:"styles,omitempty" validate:"omitempty,dive,max=50"`
}

// Validate checks the request against its field constraints.
func (r *SearchEventsRequest) Validate() error {
	return validate.Struct(r)
}

// VoteRequest is the body of an event or venue vote call.
type VoteRequest struct {
	EventID  string `json:"eventId" validate:"required,uuid4"`
	UserUUID string `json:"userUuid" validate:"required,uuid4"`
	VoteType string `json:"voteType" validate:"required"`
}

// Validate checks identifier shapes. Valid vote type values depend on
// the endpoint and are checked by the handler.
func (r *VoteRequest) Validate() error {
	return validate.Struct(r)
}
