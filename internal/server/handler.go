// Package server is the reference contacts backend the client talks to.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/db"
	"github.com/pdxmph/addressbook/internal/validate"
	"go.uber.org/zap"
)

// Store is the contact persistence behind the handlers
type Store interface {
	ListContacts() ([]db.Contact, error)
	SearchContacts(query string) ([]db.Contact, error)
	AddContact(c db.Contact) (*db.Contact, error)
	UpdateContact(c db.Contact) (*db.Contact, error)
	DeleteContact(id string) error
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type contactRequest struct {
	Name    string   `json:"name" validate:"required"`
	Email   string   `json:"email" validate:"omitempty,contactemail"`
	Emails  []string `json:"emails" validate:"dive,contactemail"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
}

var requestMessages = map[string]string{
	"loginRequest.Username.required":             "Username is required",
	"loginRequest.Password.required":             "Password is required",
	"contactRequest.Name.required":               "Name is required",
	"contactRequest.Email." + validate.EmailTag:  "Email is invalid",
	"contactRequest.Emails." + validate.EmailTag: "All emails must be valid",
}

// Handler serves the contacts API
type Handler struct {
	log      *zap.Logger
	store    Store
	auth     *Authenticator
	validate *validator.Validate
}

// New creates a new Handler instance
func New(log *zap.Logger, store Store, auth *Authenticator, v *validator.Validate) *Handler {
	return &Handler{log: log, store: store, auth: auth, validate: v}
}

// Health reports that the server is up
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login exchanges a username and password for a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.log.Warn("login rejected", zap.String("username", req.Username), zap.Error(err))
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	h.log.Info("login", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// RequireAuth rejects requests without a valid bearer token
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		username, err := h.auth.Verify(strings.TrimSpace(token))
		if err != nil {
			h.log.Debug("token rejected", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), username)))
	})
}

// ListContacts returns every contact
func (h *Handler) ListContacts(w http.ResponseWriter, _ *http.Request) {
	rows, err := h.store.ListContacts()
	if err != nil {
		h.storeFailed(w, "list contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, toAPI(rows))
}

// SearchContacts filters contacts by the q query parameter
func (h *Handler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.SearchContacts(r.URL.Query().Get("q"))
	if err != nil {
		h.storeFailed(w, "search contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, toAPI(rows))
}

// CreateContact stores a new contact
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.store.AddContact(db.FromPayload("", req.payload()))
	if err != nil {
		h.storeFailed(w, "create contact", err)
		return
	}

	h.log.Info("contact created", userField(r), zap.String("id", created.ID))
	writeJSON(w, http.StatusCreated, created.ToAPI())
}

// UpdateContact replaces the contact named in the path
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.store.UpdateContact(db.FromPayload(id, req.payload()))
	if err != nil {
		h.storeFailed(w, "update contact", err)
		return
	}

	h.log.Info("contact updated", userField(r), zap.String("id", id))
	writeJSON(w, http.StatusOK, updated.ToAPI())
}

// DeleteContact removes the contact named in the path
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteContact(id); err != nil {
		h.storeFailed(w, "delete contact", err)
		return
	}

	h.log.Info("contact deleted", userField(r), zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		msg := "invalid request payload"
		if fieldErrs := validate.FieldErrors(err, requestMessages); len(fieldErrs) > 0 {
			msg = fieldErrs[0].Message
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func (h *Handler) storeFailed(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}
	h.log.Error("store failure", zap.String("action", action), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func (req contactRequest) payload() contact.Payload {
	return contact.Payload{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Emails:  req.Emails,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

func userField(r *http.Request) zap.Field {
	username, _ := UserFromContext(r.Context())
	return zap.String("user", username)
}

func toAPI(rows []db.Contact) []contact.Contact {
	out := make([]contact.Contact, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToAPI())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
