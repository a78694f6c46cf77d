package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBody caps a decoded request body. A full board with history is a few tens of KB.
const MaxRequestBody = 1 << 20

// DecodeJSONRequest decodes the request body into dst. Unknown fields are
// ignored because game clients attach UI state to pieces.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	return DecodeJSON(http.MaxBytesReader(w, r.Body, MaxRequestBody), dst)
}

func DecodeJSON(rd io.Reader, dst any) error {
	if err := json.NewDecoder(rd).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
