// Package fakeapi is an in-process stand-in for the testimony archive REST
// API, used by client, service and CLI tests.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/models"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// GoogleCode is the only OAuth code the fake accepts.
const GoogleCode = "valid-google-code"

type Request struct {
	Method    string
	Path      string
	RequestID string
	Auth      string
}

type account struct {
	user     models.User
	password string
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	accounts    map[string]*account
	tokens      map[string]int
	testimonies map[int]*models.Testimony
	owners      map[int]int
	nextID      int
	nextUserID  int
	requests    []Request
	uploads     map[string][]string
	failUploads map[string]int
	overrides   map[string]http.HandlerFunc

	// DraftsEnvelope wraps the drafts listing in {"data": [...]}.
	DraftsEnvelope bool
}

// New starts a fake API. Close it with Server.Close.
func New() *Server {
	s := &Server{
		accounts:    make(map[string]*account),
		tokens:      make(map[string]int),
		testimonies: make(map[int]*models.Testimony),
		owners:      make(map[int]int),
		uploads:     make(map[string][]string),
		failUploads: make(map[string]int),
		overrides:   make(map[string]http.HandlerFunc),
		nextID:      1,
		nextUserID:  1,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/google/callback", s.google).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.authed(s.me)).Methods(http.MethodGet)

	r.HandleFunc("/testimonies", s.listTestimonies).Methods(http.MethodGet)
	r.HandleFunc("/testimonies", s.authed(s.createTestimony)).Methods(http.MethodPost)
	r.HandleFunc("/testimonies/drafts", s.authed(s.drafts)).Methods(http.MethodGet)
	r.HandleFunc("/testimonies/{id:[0-9]+}", s.getTestimony).Methods(http.MethodGet)
	r.HandleFunc("/testimonies/{id:[0-9]+}", s.authed(s.updateTestimony)).Methods(http.MethodPatch)

	r.HandleFunc("/upload/{kind:images|audio|video}", s.authed(s.upload)).Methods(http.MethodPost)
	return r
}

// record logs every request and gives overrides a chance to answer first.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get(common.RequestIDHeaderName),
			Auth:      r.Header.Get(common.AuthorizationHeaderName),
		})
		override := s.overrides[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Override replaces the handler for one method and path.
func (s *Server) Override(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	s.overrides[method+" "+path] = h
	s.mu.Unlock()
}

// FailUploads makes the next n uploads of fileName answer 500; n < 0 fails
// forever.
func (s *Server) FailUploads(fileName string, n int) {
	s.mu.Lock()
	s.failUploads[fileName] = n
	s.mu.Unlock()
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Uploaded returns the file names received on /upload/<kind>.
func (s *Server) Uploaded(kind string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads[kind]...)
}

// AddUser registers an account and returns a token valid for it.
func (s *Server) AddUser(email, password, fullName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.addAccountLocked(email, password, fullName)
	return s.issueLocked(a.user)
}

// Seed stores t as owned by the account with ownerEmail (public when empty)
// and returns its id.
func (s *Server) Seed(t models.Testimony, ownerEmail string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.UpdatedAt = t.CreatedAt
	s.testimonies[t.ID] = &t
	if a, ok := s.accounts[ownerEmail]; ok {
		s.owners[t.ID] = a.user.ID
	}
	return t.ID
}

// Testimony returns a copy of the stored record.
func (s *Server) Testimony(id int) (models.Testimony, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.testimonies[id]
	if !ok {
		return models.Testimony{}, false
	}
	return *t, true
}

// RevokeTokens makes every issued token invalid.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = make(map[string]int)
	s.mu.Unlock()
}

func (s *Server) addAccountLocked(email, password, fullName string) *account {
	a := &account{
		user:     models.User{ID: s.nextUserID, Email: email, FullName: fullName, Role: "user"},
		password: password,
	}
	s.nextUserID++
	s.accounts[email] = a
	return a
}

func (s *Server) issueLocked(u models.User) string {
	claims := jwt.MapClaims{
		"sub":   strconv.Itoa(u.ID),
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"jti":   uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("fakeapi"))
	if err != nil {
		panic(err)
	}
	s.tokens[token] = u.ID
	return token
}

type userCtxHandler func(w http.ResponseWriter, r *http.Request, userID int)

func (s *Server) authed(h userCtxHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token := strings.TrimPrefix(header, common.BearerPrefix)

		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()

		if header == "" || !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r, userID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[req.Email]
	if !ok || a.password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := s.issueLocked(a.user)
	user := a.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: token, User: &user})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"statusCode": http.StatusBadRequest,
			"message":    []string{"email should not be empty", "password should not be empty"},
		})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	a := s.addAccountLocked(req.Email, req.Password, req.FullName)
	token := s.issueLocked(a.user)
	user := a.user
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.AuthResponse{AccessToken: token, User: &user})
}

func (s *Server) google(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("code") != GoogleCode {
		writeError(w, http.StatusUnauthorized, "Invalid authorization code")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts["google.user@example.com"]
	if !ok {
		a = s.addAccountLocked("google.user@example.com", "", "Google User")
	}
	token := s.issueLocked(a.user)
	user := a.user
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: token, User: &user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerPrefix)
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == userID {
			writeJSON(w, http.StatusOK, a.user)
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}

func (s *Server) listTestimonies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	subType := q.Get("submissionType")

	s.mu.Lock()
	var matched []models.Testimony
	for _, t := range s.testimonies {
		if t.IsDraft {
			continue
		}
		if subType != "" && string(t.SubmissionType) != subType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.EventTitle+" "+t.TestimonyText), search) {
			continue
		}
		matched = append(matched, *t)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)

	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if skip > len(matched) {
		skip = len(matched)
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	if matched == nil {
		matched = []models.Testimony{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": matched, "total": total})
}

func (s *Server) drafts(w http.ResponseWriter, r *http.Request, userID int) {
	s.mu.Lock()
	out := []models.Testimony{}
	for id, t := range s.testimonies {
		if s.owners[id] == userID {
			out = append(out, *t)
		}
	}
	envelope := s.DraftsEnvelope
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if envelope {
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTestimony(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	t, ok := s.Testimony(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Testimony not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) createTestimony(w http.ResponseWriter, r *http.Request, userID int) {
	t := &models.Testimony{}
	if err := s.decodeTestimony(r, t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if t.SubmissionType == "" {
		writeError(w, http.StatusBadRequest, "submissionType is required")
		return
	}

	s.mu.Lock()
	t.ID = s.nextID
	s.nextID++
	t.Status = models.StatusPending
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	s.testimonies[t.ID] = t
	s.owners[t.ID] = userID
	out := *t
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateTestimony(w http.ResponseWriter, r *http.Request, userID int) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	existing, ok := s.testimonies[id]
	owner := s.owners[id]
	var t models.Testimony
	if ok {
		t = *existing
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Testimony not found")
		return
	}
	if owner != userID {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := s.decodeTestimony(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.testimonies[id] = &t
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, t)
}

// decodeTestimony applies a JSON or multipart body onto t. Absent fields
// leave t unchanged, like a PATCH.
func (s *Server) decodeTestimony(r *http.Request, t *models.Testimony) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return s.decodeTestimonyForm(r, t)
	}

	var req models.CreateOrUpdateTestimonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	applyRequest(t, &req)
	return nil
}

func applyRequest(t *models.Testimony, req *models.CreateOrUpdateTestimonyRequest) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	if req.SubmissionType != "" {
		t.SubmissionType = req.SubmissionType
	}
	if req.IdentityPreference != "" {
		t.IdentityPreference = req.IdentityPreference
	}
	setString(&t.FullName, req.FullName)
	setString(&t.RelationToEvent, req.RelationToEvent)
	setString(&t.Location, req.Location)
	setString(&t.DateOfEventFrom, req.DateOfEventFrom)
	setString(&t.DateOfEventTo, req.DateOfEventTo)
	setString(&t.EventTitle, req.EventTitle)
	setString(&t.TestimonyText, req.TestimonyText)
	setString(&t.AudioURL, req.AudioURL)
	setString(&t.VideoURL, req.VideoURL)
	if req.AudioDuration != nil {
		t.AudioDuration = req.AudioDuration
	}
	if req.VideoDuration != nil {
		t.VideoDuration = req.VideoDuration
	}
	if req.Relatives != nil {
		t.Relatives = req.Relatives
	}
	if req.Images != nil {
		t.Images = req.Images
	}
	if req.Consent != nil {
		t.Consent = *req.Consent
	}
	t.IsDraft = req.IsDraft
}

func (s *Server) decodeTestimonyForm(r *http.Request, t *models.Testimony) error {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	form := r.MultipartForm
	vals := url.Values(form.Value)

	req := models.CreateOrUpdateTestimonyRequest{
		SubmissionType:     models.SubmissionType(vals.Get("submissionType")),
		IdentityPreference: models.Identity(vals.Get("identityPreference")),
		FullName:           vals.Get("fullName"),
		RelationToEvent:    vals.Get("relationToEvent"),
		Location:           vals.Get("location"),
		DateOfEventFrom:    vals.Get("dateOfEventFrom"),
		DateOfEventTo:      vals.Get("dateOfEventTo"),
		EventTitle:         vals.Get("eventTitle"),
		TestimonyText:      vals.Get("testimonyText"),
		IsDraft:            vals.Get("isDraft") == "true",
	}
	if v := vals.Get("consent"); v != "" {
		consent := v == "true"
		req.Consent = &consent
	}
	if v := vals.Get("relatives"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Relatives); err != nil {
			return fmt.Errorf("relatives: %w", err)
		}
	}

	var descriptions []string
	if v := vals.Get("imageDescriptions"); v != "" {
		if err := json.Unmarshal([]byte(v), &descriptions); err != nil {
			return fmt.Errorf("imageDescriptions: %w", err)
		}
	}
	if files := form.File["images"]; len(files) > 0 {
		images := append([]models.ImageRecord(nil), t.Images...)
		for i, fh := range files {
			img := models.ImageRecord{URL: s.URL + "/media/images/" + fh.Filename, FileName: fh.Filename}
			if i < len(descriptions) {
				img.Description = descriptions[i]
			}
			images = append(images, img)
		}
		req.Images = images
	}
	if fhs := form.File["audio"]; len(fhs) > 0 {
		req.AudioURL = s.URL + "/media/audio/" + fhs[0].Filename
	}
	if fhs := form.File["video"]; len(fhs) > 0 {
		req.VideoURL = s.URL + "/media/video/" + fhs[0].Filename
	}

	applyRequest(t, &req)
	return nil
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, userID int) {
	kind := mux.Vars(r)["kind"]

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		writeError(w, http.StatusBadRequest, "read file")
		return
	}

	s.mu.Lock()
	remaining, failing := s.failUploads[header.Filename]
	if failing && remaining != 0 {
		if remaining > 0 {
			s.failUploads[header.Filename] = remaining - 1
		}
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "storage backend failed")
		return
	}
	s.uploads[kind] = append(s.uploads[kind], header.Filename)
	s.mu.Unlock()

	mediaURL := s.URL + "/media/" + kind + "/" + header.Filename
	if kind == "images" {
		writeJSON(w, http.StatusCreated, models.ImageUploadResponse{URL: mediaURL, FileName: header.Filename, PublicID: kind + "/" + header.Filename})
		return
	}
	duration := 42.5
	writeJSON(w, http.StatusCreated, models.AudioUploadResponse{URL: mediaURL, FileName: header.Filename, Duration: &duration, PublicID: kind + "/" + header.Filename})
}
