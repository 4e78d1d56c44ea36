package credential

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"certifier/internal/platform/config"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/circuit"
)

type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	client  *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.client = New(config.CredentialConfig{
		BaseURL:       s.server.URL + "/v1",
		APIKey:        "secret",
		ViewerBaseURL: "https://www.credential.net/",
		Timeout:       2 * time.Second,
	})
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func decodeBody(t require.TestingT, r *http.Request) map[string]any {
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func (s *ClientSuite) TestCreate() {
	s.Run("sends wrapped payload and returns the credential", func() {
		var got map[string]any
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			s.Equal(http.MethodPost, r.Method)
			s.Equal("/v1/credentials", r.URL.Path)
			s.Equal("Token token=secret", r.Header.Get("Authorization"))
			s.Equal("application/json", r.Header.Get("Content-Type"))
			got = decodeBody(s.T(), r)
			_, _ = w.Write([]byte(`{"credential":{"id":"cred_1","approve":true,"grade":9123}}`))
		}

		cred, err := s.client.Create(context.Background(), Issuance{
			Name:          "Demo Course",
			AchievementID: "course-v1:edX+DemoX+2026_T1",
			CourseLink:    "/courses/course-v1:edX+DemoX+2026_T1/about",
			Approve:       true,
			Grade:         9123,
			Recipient:     Recipient{Name: "Ada", Email: "ada@example.com"},
		})
		s.Require().NoError(err)
		s.Equal(ID("cred_1"), cred.ID)
		s.Equal("https://www.credential.net/cred_1", s.client.DownloadURL(cred))

		inner, ok := got["credential"].(map[string]any)
		s.Require().True(ok)
		s.InDelta(9123, inner["grade"], 0)
		s.Equal(true, inner["approve"])
		s.Equal("course-v1:edX+DemoX+2026_T1", inner["achievement_id"])
		recipient := inner["recipient"].(map[string]any)
		s.Equal("ada@example.com", recipient["email"])
	})

	s.Run("numeric id and top-level private key", func() {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"credential":{"id":10442},"private":true,"private_key":"abc"}`))
		}

		cred, err := s.client.Create(context.Background(), Issuance{})
		s.Require().NoError(err)
		s.Equal(ID("10442"), cred.ID)
		s.Equal("https://www.credential.net/10442?key=abc", s.client.DownloadURL(cred))
	})

	s.Run("server error becomes a status ServiceError", func() {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}

		cred, err := s.client.Create(context.Background(), Issuance{})
		s.Nil(cred)
		var se *ServiceError
		s.Require().True(errors.As(err, &se))
		s.Equal(CategoryStatus, se.Category)
		s.Equal(http.StatusInternalServerError, se.StatusCode)
		s.Contains(se.Error(), "boom")
	})

	s.Run("error excerpt stays valid UTF-8", func() {
		for name, body := range map[string]string{
			"multi-byte cut": "x" + strings.Repeat("é", 200),
			"invalid bytes":  "bad \xff\xfe body",
		} {
			s.Run(name, func() {
				s.handler = func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(body))
				}

				_, err := s.client.Create(context.Background(), Issuance{})
				var se *ServiceError
				s.Require().True(errors.As(err, &se))
				s.True(utf8.ValidString(se.Error()))
				s.LessOrEqual(len(se.Message), len("unexpected status: ")+256)
			})
		}
	})

	s.Run("malformed body becomes a decode ServiceError", func() {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"credential":`))
		}

		_, err := s.client.Create(context.Background(), Issuance{})
		s.Equal(CategoryDecode, CategoryOf(err))
	})

	s.Run("missing id becomes a decode ServiceError", func() {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"credential":{}}`))
		}

		_, err := s.client.Create(context.Background(), Issuance{})
		s.Equal(CategoryDecode, CategoryOf(err))
	})
}

func (s *ClientSuite) TestSearchByRecipient() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/v1/credentials/search", r.URL.Path)
		body := decodeBody(s.T(), r)
		s.Equal("ada@example.com", body["recipient"].(map[string]any)["email"])
		_, _ = w.Write([]byte(`{"credentials":[
			{"id":1,"grade":"8000","course_link":"/courses/MITx/6.002x/2013_Spring/about"},
			{"id":"2","grade":75.5,"course_link":"/courses/other/about"}
		]}`))
	}

	creds, err := s.client.SearchByRecipient(context.Background(), "ada@example.com")
	s.Require().NoError(err)
	s.Require().Len(creds, 2)
	s.Equal(ID("1"), creds[0].ID)
	s.Equal(Grade(8000), creds[0].Grade)
	s.Equal(Grade(76), creds[1].Grade)
}

func (s *ClientSuite) TestUpdate() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPut, r.Method)
		s.Equal("/v1/credentials/cred_1", r.URL.Path)
		inner := decodeBody(s.T(), r)["credential"].(map[string]any)
		s.Equal(true, inner["approve"])
		s.InDelta(9500, inner["grade"], 0)
		w.WriteHeader(http.StatusOK)
	}

	s.NoError(s.client.Update(context.Background(), "cred_1", Update{Approve: true, Grade: 9500}))
}

func (s *ClientSuite) TestListByAchievement() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodGet, r.Method)
		s.Equal("/v1/credentials", r.URL.Path)
		s.Equal("MITx/6.002x/2013_Spring", r.URL.Query().Get("achievement_id"))
		s.Equal("true", r.URL.Query().Get("full_view"))
		_, _ = w.Write([]byte(`{"credentials":[{"id":1,"approve":true,"recipient":{"email":"ada@example.com"}}]}`))
	}

	creds, err := s.client.ListByAchievement(context.Background(), "MITx/6.002x/2013_Spring")
	s.Require().NoError(err)
	s.Require().Len(creds, 1)
	s.True(creds[0].Approve)
	s.Equal("ada@example.com", creds[0].Recipient.Email)
}

func (s *ClientSuite) TestTimeout() {
	release := make(chan struct{})
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}
	defer close(release)

	client := New(config.CredentialConfig{
		BaseURL:       s.server.URL,
		ViewerBaseURL: "https://www.credential.net",
		Timeout:       50 * time.Millisecond,
	})
	_, err := client.SearchByRecipient(context.Background(), "ada@example.com")
	s.Equal(CategoryTimeout, CategoryOf(err))
	s.Equal(dErrors.CodeTimeout, DomainCode(err))
}

func (s *ClientSuite) TestBreaker() {
	calls := 0
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/v1/credentials/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}
	breaker := circuit.New("credential_provider", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	client := New(config.CredentialConfig{BaseURL: s.server.URL + "/v1", Timeout: time.Second}, WithBreaker(breaker))
	ctx := context.Background()

	s.Equal(CategoryStatus, CategoryOf(client.Update(ctx, "missing", Update{})), "client errors do not trip the breaker")
	s.Equal(circuit.StateClosed, breaker.State())

	s.Equal(CategoryStatus, CategoryOf(client.Update(ctx, "cred_1", Update{})))
	s.Equal(CategoryStatus, CategoryOf(client.Update(ctx, "cred_1", Update{})))
	s.Equal(circuit.StateOpen, breaker.State())

	s.Equal(CategoryCircuitOpen, CategoryOf(client.Update(ctx, "cred_1", Update{})))
	s.Equal(3, calls, "open circuit refuses without calling the provider")
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := New(config.CredentialConfig{BaseURL: base, Timeout: time.Second})
	err := client.Update(context.Background(), "cred_1", Update{Approve: true})

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CategoryTransport, se.Category)
	assert.Equal(t, "update", se.Op)
}

func TestIDAndGradeDecoding(t *testing.T) {
	var c Credential
	require.NoError(t, json.Unmarshal([]byte(`{"id":null,"grade":null}`), &c))
	assert.Empty(t, c.ID)
	assert.Zero(t, c.Grade)

	require.Error(t, json.Unmarshal([]byte(`{"grade":"A+"}`), &c))
}
