package callback

import (
	"bytes"
	"encoding/json"
	"strings"

	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/validation"
)

// Notification is a provider's out-of-band report about one credential.
type Notification struct {
	ExternalKey  string
	Username     string
	CourseID     string
	Failed       bool
	ErrorReason  string
	DownloadUUID string
	VerifyUUID   string
	URL          string
}

// Envelope is the wire shape shared by POST /update_certificate and the
// callback topic.
type Envelope struct {
	Header struct {
		LMSKey string `json:"lms_key"`
	} `json:"header"`
	Body struct {
		Username     string          `json:"username"`
		CourseID     string          `json:"course_id"`
		Error        json.RawMessage `json:"error,omitempty"`
		ErrorReason  *string         `json:"error_reason,omitempty"`
		DownloadUUID string          `json:"download_uuid"`
		VerifyUUID   string          `json:"verify_uuid"`
		URL          string          `json:"url"`
	} `json:"body"`
}

// DecodeEnvelope parses a JSON callback envelope.
func DecodeEnvelope(b []byte) (Notification, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Notification{}, dErrors.New(dErrors.CodeBadRequest, "invalid callback payload")
	}
	return env.checked()
}

// DecodeParts parses the header and body documents when they arrive as
// separate form fields.
func DecodeParts(header, body string) (Notification, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(header), &env.Header); err != nil {
		return Notification{}, dErrors.New(dErrors.CodeBadRequest, "invalid callback header")
	}
	if err := json.Unmarshal([]byte(body), &env.Body); err != nil {
		return Notification{}, dErrors.New(dErrors.CodeBadRequest, "invalid callback body")
	}
	return env.checked()
}

func (e Envelope) checked() (Notification, error) {
	n := e.Notification()
	err := validation.CheckStringLengths(
		validation.StringLimit{Field: "lms_key", Value: n.ExternalKey, Max: validation.MaxExternalKeyLength},
		validation.StringLimit{Field: "username", Value: n.Username, Max: validation.MaxUsernameLength},
		validation.StringLimit{Field: "course_id", Value: n.CourseID, Max: validation.MaxCourseKeyLength},
		validation.StringLimit{Field: "download_uuid", Value: n.DownloadUUID, Max: validation.MaxUUIDLength},
		validation.StringLimit{Field: "verify_uuid", Value: n.VerifyUUID, Max: validation.MaxUUIDLength},
		validation.StringLimit{Field: "url", Value: n.URL, Max: validation.MaxURLLength},
	)
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Notification flattens the envelope. Any "error" field marks the callback
// failed, even an empty one. error_reason wins over the error value as the
// recorded reason.
func (e Envelope) Notification() Notification {
	n := Notification{
		ExternalKey:  e.Header.LMSKey,
		Username:     e.Body.Username,
		CourseID:     e.Body.CourseID,
		DownloadUUID: e.Body.DownloadUUID,
		VerifyUUID:   e.Body.VerifyUUID,
		URL:          e.Body.URL,
	}
	if len(e.Body.Error) > 0 {
		n.Failed = true
		n.ErrorReason = rawText(e.Body.Error)
	}
	if e.Body.ErrorReason != nil && *e.Body.ErrorReason != "" {
		n.ErrorReason = *e.Body.ErrorReason
	}
	n.ErrorReason = validation.Truncate(n.ErrorReason, validation.MaxErrorReasonLength)
	return n
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
