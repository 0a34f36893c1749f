package validate

import (
	"testing"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
)

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Note   string `json:"-" validate:"max=3"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "nope", Rating: 9, Note: "long"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("email detail: %q", details["email"])
	}
	if details["rating"] != "must be at most 5" {
		t.Fatalf("rating detail: %q", details["rating"])
	}
	if details["Note"] != "must be at most 3" {
		t.Fatalf("untagged field should fall back to its Go name: %+v", details)
	}
}

func TestStructPasses(t *testing.T) {
	if err := Struct(sample{Email: "a@x.com", Rating: 3}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
