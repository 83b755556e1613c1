package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Validation is the ok/error classification shown next to the endpoint setting.
type Validation struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Validator checks that an endpoint is reachable, independently of a step run.
type Validator struct {
	httpClient *http.Client
}

// NewValidator creates a validator with DefaultTimeout for connect and read.
func NewValidator() *Validator {
	return NewValidatorWithTimeout(DefaultTimeout)
}

// NewValidatorWithTimeout creates a validator with the given connect and read timeout.
func NewValidatorWithTimeout(timeout time.Duration) *Validator {
	return &Validator{httpClient: newHTTPClient(timeout)}
}

// Validate issues a GET to endpoint and classifies the outcome.
func (v *Validator) Validate(ctx context.Context, endpoint string) Validation {
	u, err := parseEndpoint(endpoint)
	if errors.Is(err, ErrEndpointRequired) {
		return Validation{Message: "API endpoint must not be empty"}
	}
	if err != nil {
		return Validation{Message: "Invalid URL"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Validation{Message: "Invalid URL"}
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Validation{Message: fmt.Sprintf("Error connecting to API: %v", err)}
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Validation{Message: fmt.Sprintf("API call failed with error code: %d", resp.StatusCode)}
	}
	return Validation{OK: true, Message: "API endpoint is valid"}
}
