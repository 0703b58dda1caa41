package validate

import (
	"strings"
	"testing"

	"github.com/tanguyors/bali-pass-home/api"
)

func TestStruct_SignupBody(t *testing.T) {
	ok := api.PostAuthSignupJSONRequestBody{Email: "made@example.com", Password: "s3cretpass", DisplayName: "Made"}
	if err := Struct(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := ok
	bad.Email = "not-an-email"
	err := Struct(bad)
	if err == nil || !strings.Contains(err.Error(), "email") {
		t.Fatalf("expected email error, got %v", err)
	}

	short := ok
	short.Password = "short"
	err = Struct(short)
	if err == nil || !strings.Contains(err.Error(), "min=8") {
		t.Fatalf("expected min length error, got %v", err)
	}
}

func TestStruct_NotBlank(t *testing.T) {
	body := api.PostCommunityPostsJSONRequestBody{Body: "   \t "}
	if err := Struct(body); err == nil {
		t.Fatalf("expected blank body to fail")
	}
	body.Body = "Sunset at Uluwatu was unreal"
	if err := Struct(body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_PassType(t *testing.T) {
	if err := Struct(api.PostPassesJSONRequestBody{Type: api.PassWeek}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Struct(api.PostPassesJSONRequestBody{Type: "year"}); err == nil {
		t.Fatalf("expected unknown pass type to fail")
	}
}
