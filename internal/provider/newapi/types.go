package newapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// quotaNotAvailable stands in for a missing data.quota field
const quotaNotAvailable = `"N/A"`

// SelfResponse represents the response from the /api/user/self endpoint
type SelfResponse struct {
	// Success is optional; an absent field counts as success
	Success *bool `json:"success"`
	// Message explains a failure when Success is false
	Message *string   `json:"message"`
	Data    *UserData `json:"data"`
}

// UserData holds the user fields this plugin reads
type UserData struct {
	// Quota is a JSON number or a numeric string
	Quota json.RawMessage `json:"quota"`
}

// IsSuccess reports whether the API considers the call successful
func (r *SelfResponse) IsSuccess() bool {
	return r.Success == nil || *r.Success
}

// RawQuota returns the quota exactly as sent, or "N/A" when absent
func (r *SelfResponse) RawQuota() json.RawMessage {
	if r.Data == nil || len(r.Data.Quota) == 0 {
		return json.RawMessage(quotaNotAvailable)
	}
	return r.Data.Quota
}

// QuotaValue converts the raw quota into a number
func (r *SelfResponse) QuotaValue() (float64, error) {
	return parseQuota(r.RawQuota())
}

// parseQuota accepts a JSON number or a string holding a number
func parseQuota(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)

	var text string
	switch {
	case len(raw) > 0 && raw[0] == '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("invalid quota string %s: %w", raw, err)
		}
		text = strings.TrimSpace(text)
	case len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')):
		text = string(raw)
	default:
		return 0, fmt.Errorf("quota must be a number, got %s", raw)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert quota %q to a number: %w", text, err)
	}
	return v, nil
}
