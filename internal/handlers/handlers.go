package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/heliohq/claims-portal/internal/http/response"
)

// decodeJSON reads the request body into dst, mapping malformed input to a
// 400 the error responder can render.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return response.BadRequest("Invalid request body")
	}
	return nil
}
