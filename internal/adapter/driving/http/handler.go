package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/secretvault/internal/application"
	"github.com/ericfisherdev/secretvault/internal/domain/model"
	"github.com/ericfisherdev/secretvault/internal/domain/port/driven"
	"github.com/ericfisherdev/secretvault/internal/vaultcrypto"
)

// MasterPasswordHeader carries the master password on gated requests. It is
// read per request and never stored.
const MasterPasswordHeader = "X-Master-Password"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the vault REST API.
type Handler struct {
	vault  *application.VaultService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(vault *application.VaultService, logger *slog.Logger) *Handler {
	return &Handler{
		vault:  vault,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request ID, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/master-password", h.MasterPasswordStatus)
	mux.HandleFunc("POST /api/v1/master-password", h.SetMasterPassword)
	mux.HandleFunc("POST /api/v1/master-password/verify", h.VerifyMasterPassword)
	mux.HandleFunc("GET /api/v1/secrets", h.SearchSecrets)
	mux.HandleFunc("PUT /api/v1/secrets/{name}", h.SaveSecret)
	mux.HandleFunc("GET /api/v1/secrets/{name}", h.GetSecret)
	mux.HandleFunc("DELETE /api/v1/secrets/{name}", h.DeleteSecret)
	mux.HandleFunc("GET /api/v1/secrets/{name}/connection-string", h.ConnectionString)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// MasterPasswordStatus reports whether the vault has been initialized.
func (h *Handler) MasterPasswordStatus(w http.ResponseWriter, r *http.Request) {
	set, err := h.vault.IsMasterPasswordSet(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MasterPasswordStatusResponse{IsSet: set})
}

// SetMasterPassword initializes the vault with the password in the body.
func (h *Handler) SetMasterPassword(w http.ResponseWriter, r *http.Request) {
	var req SetMasterPasswordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.vault.SetMasterPassword(r.Context(), req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MasterPasswordStatusResponse{IsSet: true})
}

// VerifyMasterPassword checks the password in the X-Master-Password header.
func (h *Handler) VerifyMasterPassword(w http.ResponseWriter, r *http.Request) {
	ok, err := h.vault.VerifyMasterPassword(r.Context(), r.Header.Get(MasterPasswordHeader))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: ok})
}

// SearchSecrets lists secret names containing the "q" query parameter. With
// view=summary it returns timestamps as well. No password is required.
func (h *Handler) SearchSecrets(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("view") == "summary" {
		secrets, err := h.vault.ListSecrets(r.Context())
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		resp := make([]SecretSummaryResponse, 0, len(secrets))
		for _, s := range secrets {
			resp = append(resp, toSecretSummaryResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	names, err := h.vault.SearchSecrets(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, SecretNamesResponse{Names: names})
}

// SaveSecret creates or fully replaces the named secret from a JSON object of
// string fields.
func (h *Handler) SaveSecret(w http.ResponseWriter, r *http.Request) {
	name := model.NormalizeSecretName(r.PathValue("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "secret name is required")
		return
	}

	var fields model.SecretFields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object of string fields")
		return
	}
	if err := fields.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.vault.SaveSecret(r.Context(), name, fields.WithDefaults(), r.Header.Get(MasterPasswordHeader))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSecret returns the decrypted fields of the named secret.
func (h *Handler) GetSecret(w http.ResponseWriter, r *http.Request) {
	fields, err := h.vault.GetSecret(r.Context(), r.PathValue("name"), r.Header.Get(MasterPasswordHeader))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// DeleteSecret removes the named secret. Missing secrets are not an error.
func (h *Handler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	if err := h.vault.DeleteSecret(r.Context(), r.PathValue("name"), r.Header.Get(MasterPasswordHeader)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConnectionString renders the named secret as a connection string.
func (h *Handler) ConnectionString(w http.ResponseWriter, r *http.Request) {
	conn, err := h.vault.ConnectionString(r.Context(), r.PathValue("name"), r.Header.Get(MasterPasswordHeader))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConnectionStringResponse{ConnectionString: conn})
}

// writeServiceError maps vault error kinds to HTTP status codes. Storage
// faults and anything unrecognised become 500 and are logged.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *model.FieldError

	switch {
	case errors.Is(err, application.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "invalid master password")
	case errors.Is(err, driven.ErrAlreadyInitialized):
		writeError(w, http.StatusConflict, "master password already set")
	case errors.Is(err, driven.ErrSecretNotFound):
		writeError(w, http.StatusNotFound, "secret not found")
	case errors.Is(err, vaultcrypto.ErrDecryption):
		writeError(w, http.StatusUnprocessableEntity, vaultcrypto.ErrDecryption.Error())
	case errors.Is(err, application.ErrInvalidSecret),
		errors.Is(err, application.ErrEmptyPassword),
		errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("vault operation failed",
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"storage_fault", errors.Is(err, driven.ErrStorage),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
