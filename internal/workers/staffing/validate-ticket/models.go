// internal/workers/staffing/validate-ticket/models.go
package validateticket

import "staffing-workers/internal/common/validation"

type Input struct {
	Ticket map[string]interface{} `json:"ticket"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidatedTicket  map[string]interface{}       `json:"validatedTicket,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors,omitempty"`
}
