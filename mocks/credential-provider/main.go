package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort      = "8081"
	defaultAPIKey    = "credential-provider-secret-key"
	defaultLatencyMs = "50"
)

type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Credential struct {
	ID            int       `json:"id"`
	Name          string    `json:"name,omitempty"`
	GroupName     string    `json:"group_name,omitempty"`
	Description   string    `json:"description,omitempty"`
	AchievementID string    `json:"achievement_id,omitempty"`
	CourseLink    string    `json:"course_link,omitempty"`
	Approve       bool      `json:"approve"`
	Grade         int       `json:"grade"`
	Recipient     Recipient `json:"recipient"`
	Private       bool      `json:"private"`
	PrivateKey    string    `json:"private_key,omitempty"`
	IssuedOn      string    `json:"issued_on"`
}

type credentialEnvelope struct {
	Credential Credential `json:"credential"`
}

type updateEnvelope struct {
	Credential struct {
		Approve *bool `json:"approve"`
		Grade   *int  `json:"grade"`
	} `json:"credential"`
}

type searchRequest struct {
	Recipient struct {
		Email string `json:"email"`
	} `json:"recipient"`
}

type listResponse struct {
	Credentials []Credential `json:"credentials"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// store keeps issued credentials in memory, keyed by id.
type store struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*Credential
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
	creds     = &store{nextID: 10000, byID: make(map[int]*Credential)}
)

func main() {
	port := getEnv("PORT", defaultPort)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /credentials", authorized(handleCreate))
	mux.HandleFunc("POST /credentials/search", authorized(handleSearch))
	mux.HandleFunc("PUT /credentials/{id}", authorized(handleUpdate))
	mux.HandleFunc("GET /credentials", authorized(handleList))

	log.Printf("🎓 Mock Credential Provider API starting on port %s", port)
	log.Printf("📝 API Key: %s", apiKey)
	log.Printf("⏱️  Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "credential-provider",
		"version": "1.0.0",
	})
}

// authorized checks the "Token token=<key>" header and applies the
// simulated latency.
func authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(latencyMs) * time.Millisecond)
		log.Printf("📥 Incoming request: %s %s", r.Method, r.URL.Path)

		auth := r.Header.Get("Authorization")
		if auth == "" {
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if auth != "Token token="+apiKey {
			sendError(w, "Invalid API key", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// Magic recipient emails let e2e tests steer the mock:
//   - "+fail" in the local part returns 500
//   - "+slow" in the local part sleeps past typical client timeouts
//   - "+private" issues a private credential with a private key
func magic(email, tag string) bool {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	return strings.Contains(local, "+"+tag)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialEnvelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	c := req.Credential
	if c.Recipient.Email == "" {
		sendError(w, "recipient.email is required", http.StatusUnprocessableEntity)
		return
	}
	if magic(c.Recipient.Email, "fail") {
		sendError(w, "Simulated provider failure", http.StatusInternalServerError)
		return
	}
	if magic(c.Recipient.Email, "slow") {
		time.Sleep(30 * time.Second)
	}

	creds.mu.Lock()
	creds.nextID++
	c.ID = creds.nextID
	c.IssuedOn = time.Now().UTC().Format("2006-01-02")
	if magic(c.Recipient.Email, "private") {
		c.Private = true
		c.PrivateKey = "pk" + strconv.Itoa(c.ID)
	}
	stored := c
	creds.byID[c.ID] = &stored
	creds.mu.Unlock()

	writeJSON(w, http.StatusOK, credentialEnvelope{Credential: c})
	log.Printf("✅ Credential %d issued to %s (approve=%v grade=%d)", c.ID, c.Recipient.Email, c.Approve, c.Grade)
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Recipient.Email))
	if magic(email, "fail") {
		sendError(w, "Simulated provider failure", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Credentials: creds.filter(func(c *Credential) bool {
		return strings.ToLower(c.Recipient.Email) == email
	})})
}

func handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		sendError(w, "Invalid credential id", http.StatusNotFound)
		return
	}
	var req updateEnvelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	creds.mu.Lock()
	c, ok := creds.byID[id]
	if ok {
		if req.Credential.Approve != nil {
			c.Approve = *req.Credential.Approve
		}
		if req.Credential.Grade != nil {
			c.Grade = *req.Credential.Grade
		}
	}
	var updated Credential
	if ok {
		updated = *c
	}
	creds.mu.Unlock()

	if !ok {
		sendError(w, "Credential not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, credentialEnvelope{Credential: updated})
	log.Printf("✏️  Credential %d updated (approve=%v grade=%d)", updated.ID, updated.Approve, updated.Grade)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	achievementID := r.URL.Query().Get("achievement_id")
	if achievementID == "" {
		sendError(w, "achievement_id is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Credentials: creds.filter(func(c *Credential) bool {
		return c.AchievementID == achievementID
	})})
}

func (s *store) filter(match func(*Credential) bool) []Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Credential, 0)
	for _, c := range s.byID {
		if match(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
	log.Printf("❌ Error response: %d - %s", code, message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  Invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
