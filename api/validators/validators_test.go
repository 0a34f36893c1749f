package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@farm.io","password":"pw"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email != "a@farm.io" {
		t.Fatalf("unexpected email %q", body.Email)
	}
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"email":"a@farm.io","password":"pw","extra":1}`,
		"malformed":     `{"email":`,
		"invalid email": `{"email":"nope","password":"pw"}`,
		"missing field": `{"email":"a@farm.io"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(raw))
			var body loginBody
			err := DecodeJSONBody(req, &body)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONFieldEmpty(t *testing.T) {
	var body loginBody
	if err := DecodeJSONField("  ", &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest("GET", "/products", nil)
	params, err := ParsePage(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.Page != 1 || params.Size != pagination.DefaultSize {
		t.Fatalf("unexpected defaults %+v", params)
	}

	req = httptest.NewRequest("GET", "/products?page=3&size=25", nil)
	params, err = ParsePage(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.Page != 3 || params.Size != 25 {
		t.Fatalf("unexpected params %+v", params)
	}

	for _, target := range []string{"/products?page=0", "/products?size=500", "/products?page=abc"} {
		if _, err := ParsePage(httptest.NewRequest("GET", target, nil)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", target, err)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 3); got != "hel" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	if got := SanitizeString("ñandú", 2); got != "ña" {
		t.Fatalf("unexpected %q", got)
	}
}
