package logger

import "testing"

func TestMaskAuthorization(t *testing.T) {
	got := MaskAuthorization("Bearer abcdef1234")
	want := "Bearer ****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskCookie(t *testing.T) {
	got := MaskCookie("session=abcdef1234; other=xyz")
	want := "session=****1234; other=****xyz"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"password": "hunter2",
		"token":    "abc12345",
		"nested": map[string]any{
			"api_key": "key_12345678",
		},
	}
	masked := MaskJSON(input)
	if masked["password"] != "****ter2" {
		t.Fatalf("expected masked password, got %v", masked["password"])
	}
	if masked["token"] != "****2345" {
		t.Fatalf("expected masked token, got %v", masked["token"])
	}
	nested, ok := masked["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["api_key"] != "****5678" {
		t.Fatalf("expected masked api_key, got %v", nested["api_key"])
	}
}

func TestMaskJSONCustomerPII(t *testing.T) {
	input := map[string]any{
		"customer": map[string]any{
			"name":  "Jane Doe",
			"email": "jane@example.com",
			"phone": "0771234567",
		},
	}
	masked := MaskJSON(input)
	customer, ok := masked["customer"].(map[string]any)
	if !ok {
		t.Fatalf("expected customer map")
	}
	if customer["name"] != "Jane Doe" {
		t.Fatalf("name should not be masked, got %v", customer["name"])
	}
	if customer["email"] != "****.com" {
		t.Fatalf("expected masked email, got %v", customer["email"])
	}
	if customer["phone"] != "****4567" {
		t.Fatalf("expected masked phone, got %v", customer["phone"])
	}
}
