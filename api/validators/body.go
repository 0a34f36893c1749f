package validators

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/validate"
)

// DecodeJSONBody decodes r's body into dest, rejecting unknown fields, then validates it.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	return DecodeJSON(r.Body, dest)
}

// DecodeJSONField does the same for a JSON document carried in a multipart form value.
func DecodeJSONField(raw string, dest any) error {
	if strings.TrimSpace(raw) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid request body").WithDetails(map[string]any{"error": "empty payload"})
	}
	return DecodeJSON(strings.NewReader(raw), dest)
}

func DecodeJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return validate.Struct(dest)
}
