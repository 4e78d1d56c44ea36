package credential

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// ID is a provider credential id. The provider returns numbers; fixtures and
// older payloads use strings. Both decode to the same text form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Grade is the provider's recorded grade in hundredths of a percent. It may
// arrive as a number, a decimal, or a quoted number.
type Grade int

func (g *Grade) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*g = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*g = Grade(math.Round(f))
	return nil
}

// Recipient identifies who a credential is issued to.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Issuance is the body of a create request.
type Issuance struct {
	Name          string    `json:"name"`
	GroupName     string    `json:"group_name"`
	Description   string    `json:"description"`
	AchievementID string    `json:"achievement_id"`
	CourseLink    string    `json:"course_link"`
	Approve       bool      `json:"approve"`
	TemplateName  string    `json:"template_name"`
	Grade         int       `json:"grade"`
	Recipient     Recipient `json:"recipient"`
}

// Update is the body of an update request.
type Update struct {
	Approve bool `json:"approve"`
	Grade   int  `json:"grade"`
}

// Credential is the provider's view of an issued credential.
type Credential struct {
	ID         ID        `json:"id"`
	Approve    bool      `json:"approve"`
	Grade      Grade     `json:"grade"`
	CourseLink string    `json:"course_link"`
	Recipient  Recipient `json:"recipient"`
	Private    bool      `json:"private"`
	PrivateKey string    `json:"private_key,omitempty"`
}

type credentialEnvelope[T any] struct {
	Credential T `json:"credential"`
}

// createResponse also accepts private and private_key beside the credential
// object, where some provider versions place them.
type createResponse struct {
	Credential Credential `json:"credential"`
	Private    *bool      `json:"private,omitempty"`
	PrivateKey string     `json:"private_key,omitempty"`
}

type searchRequest struct {
	Recipient struct {
		Email string `json:"email"`
	} `json:"recipient"`
}

type listResponse struct {
	Credentials []Credential `json:"credentials"`
}
