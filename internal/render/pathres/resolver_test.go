package pathres

import "testing"

func TestResolveNestedPath(t *testing.T) {
	r := NewResolver()
	ctx := map[string]any{"a": map[string]any{"b": float64(5)}}
	if got := r.Resolve(ctx, "a.b"); got != float64(5) {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestResolveFlatten(t *testing.T) {
	r := NewResolver()
	ctx := map[string]any{
		"items": []any{
			map[string]any{"x": float64(1)},
			map[string]any{"x": float64(2)},
		},
	}
	if got := r.Resolve(ctx, "items[].x"); got != "1\n2" {
		t.Fatalf("expected joined values, got %q", got)
	}
}

func TestResolveMissingPathReturnsEmpty(t *testing.T) {
	r := NewResolver()
	if got := r.Resolve(map[string]any{}, "missing.path"); got != "" {
		t.Fatalf("expected empty string, got %v", got)
	}
}

func TestResolveBracketIndex(t *testing.T) {
	r := NewResolver()
	ctx := map[string]any{
		"items": []any{
			map[string]any{"x": "first"},
			map[string]any{"x": "second"},
		},
	}
	if got := r.Resolve(ctx, "items[1].x"); got != "second" {
		t.Fatalf("expected second, got %v", got)
	}
}

func TestResolveFlattenMissingArray(t *testing.T) {
	r := NewResolver()
	if got := r.Resolve(map[string]any{}, "items[].x"); got != "" {
		t.Fatalf("expected empty string for absent array, got %v", got)
	}
}

func TestResolveTypeMismatchReturnsEmpty(t *testing.T) {
	r := NewResolver()
	ctx := map[string]any{"a": "scalar"}
	if got := r.Resolve(ctx, "a.b.c"); got != "" {
		t.Fatalf("expected empty string, got %v", got)
	}
}

func TestResolveCachesPrograms(t *testing.T) {
	r := NewResolver()
	ctx := map[string]any{"a": map[string]any{"b": "v"}}
	if got := r.Resolve(ctx, "a.b"); got != "v" {
		t.Fatalf("first resolve: got %v", got)
	}
	if _, ok := r.programs.Get("a.b"); !ok {
		t.Fatalf("expected parsed program to be cached")
	}
	if got := r.Resolve(ctx, "a.b"); got != "v" {
		t.Fatalf("cached resolve: got %v", got)
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(2.5), "2.5"},
		{float64(3), "3"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := Stringify(tc.in); got != tc.want {
			t.Errorf("Stringify(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
