package shared

import (
	"errors"
	"fmt"
	"time"
)

// Game error codes returned in the {"error": {"code": ...}} envelope
const (
	ErrorCodeRateLimited          = 429
	ErrorCodeCooldown             = 4000
	ErrorCodeNavigateSameWaypoint = 4204
	ErrorCodeShipInTransit        = 4214
	ErrorCodeSurveyVerification   = 4221
	ErrorCodeSurveyExpired        = 4222
	ErrorCodeSurveyExhausted      = 4224
	ErrorCodeWaypointCharted      = 4230
	ErrorCodeContractAccepted     = 4501
	ErrorCodeContractFulfilled    = 4504
	ErrorCodeMarketTradeNotSold   = 4602
)

// APIError is the structured error envelope returned by the game server.
// Data carries auxiliary information such as cooldowns or retry hints.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Data       map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an *APIError when it carries one
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCooldown reports a cooldown conflict (extraction, survey or jump still cooling down)
func (e *APIError) IsCooldown() bool {
	if e.Code == ErrorCodeCooldown {
		return true
	}
	_, ok := e.Cooldown()
	return ok
}

// IsSurveyExhausted reports that the attached survey can no longer be used
func (e *APIError) IsSurveyExhausted() bool {
	switch e.Code {
	case ErrorCodeSurveyExhausted, ErrorCodeSurveyExpired, ErrorCodeSurveyVerification:
		return true
	}
	return false
}

func (e *APIError) IsAlreadyCharted() bool {
	return e.Code == ErrorCodeWaypointCharted
}

func (e *APIError) IsContractAccepted() bool {
	return e.Code == ErrorCodeContractAccepted
}

func (e *APIError) IsInTransit() bool {
	return e.Code == ErrorCodeShipInTransit
}

func (e *APIError) IsRateLimited() bool {
	return e.Code == ErrorCodeRateLimited || e.StatusCode == 429
}

// Cooldown extracts data.cooldown.remainingSeconds
func (e *APIError) Cooldown() (time.Duration, bool) {
	cooldown, ok := e.Data["cooldown"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	return secondsValue(cooldown["remainingSeconds"])
}

// SecondsToArrival extracts data.secondsToArrival from an in-transit error
func (e *APIError) SecondsToArrival() (time.Duration, bool) {
	return secondsValue(e.Data["secondsToArrival"])
}

// RetryAfter extracts data.retryAfter from a rate-limit error
func (e *APIError) RetryAfter() (time.Duration, bool) {
	return secondsValue(e.Data["retryAfter"])
}

// LogFields returns the error as logger metadata
func (e *APIError) LogFields() map[string]interface{} {
	return map[string]interface{}{
		"error_code":    e.Code,
		"error_message": e.Message,
		"error_data":    e.Data,
	}
}

func secondsValue(v interface{}) (time.Duration, bool) {
	var seconds float64
	switch n := v.(type) {
	case float64:
		seconds = n
	case int:
		seconds = float64(n)
	case int64:
		seconds = float64(n)
	default:
		return 0, false
	}
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds * float64(time.Second)), true
}
