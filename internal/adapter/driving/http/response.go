package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/secretvault/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// Responses may contain decrypted secrets.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// MasterPasswordStatusResponse reports whether the vault is initialized.
type MasterPasswordStatusResponse struct {
	IsSet bool `json:"is_set"`
}

// SetMasterPasswordRequest is the JSON body for initializing the vault.
type SetMasterPasswordRequest struct {
	Password string `json:"password"`
}

// VerifyResponse reports the outcome of a master password check.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// SecretNamesResponse lists secret names.
type SecretNamesResponse struct {
	Names []string `json:"names"`
}

// SecretSummaryResponse is the non-sensitive metadata of a secret.
type SecretSummaryResponse struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ConnectionStringResponse carries a rendered connection string.
type ConnectionStringResponse struct {
	ConnectionString string `json:"connection_string"`
}

// toSecretSummaryResponse converts a domain Secret to its metadata representation.
func toSecretSummaryResponse(s model.Secret) SecretSummaryResponse {
	return SecretSummaryResponse{
		Name:      s.Name,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
