package iotfarm

import (
	"bytes"
	"encoding/json"
	"errors"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
)

// ErrMalformed marks a 2xx response whose body is not the expected {data: T} shape.
var ErrMalformed = errors.New("malformed response")

var errMissingToken = errors.New("login response carries no token")

// decodeEnvelope reads {data: T}. A missing, null or mistyped data field is reported
// as ErrMalformed wrapped in DEPENDENCY_ERROR.
func decodeEnvelope[T any](body []byte) (T, error) {
	var zero T
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, malformed(err)
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return zero, malformed(errors.New("data field missing"))
	}
	var out T
	if err := json.Unmarshal(envelope.Data, &out); err != nil {
		return zero, malformed(err)
	}
	return out, nil
}

func malformed(cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, errors.Join(ErrMalformed, cause), ErrMalformed.Error())
}

// IsMalformed reports whether err came from an unexpected response shape.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
