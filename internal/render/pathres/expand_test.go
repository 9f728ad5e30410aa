package pathres

import "testing"

func newTestExpander() *Expander {
	return NewExpander(NewResolver())
}

func TestExpandPlainPath(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{"customer": map[string]any{"name": "Jane"}}
	if got := e.Expand("Hello {{ customer.name }}!", ctx); got != "Hello Jane!" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandFormatCurrency(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{"total": float64(1234.5)}
	if got := e.Expand("{{ formatCurrency total }}", ctx); got != "1,234.50" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandMultiply(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{"qty": float64(3), "price": float64(2.5)}
	if got := e.Expand("{{ multiply qty price }}", ctx); got != "7.5" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandEq(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{"status": "paid"}
	if got := e.Expand("{{ eq status 'paid' }}", ctx); got != "true" {
		t.Fatalf("got %q", got)
	}
	if got := e.Expand("{{ eq status 'due' }}", ctx); got != "false" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandGet(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{"meta": map[string]any{"branch": "Colombo"}}
	if got := e.Expand("{{ get meta 'branch' }}", ctx); got != "Colombo" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandFormatDate(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{"issuedAt": "2026-03-04T10:30:00Z"}
	if got := e.Expand("{{ formatDate issuedAt }}", ctx); got != "2026-03-04" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandUnknownHelperIsBlank(t *testing.T) {
	e := newTestExpander()
	if got := e.Expand("[{{ shout name }}]", map[string]any{"name": "x"}); got != "[]" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandMissingPathIsBlank(t *testing.T) {
	e := newTestExpander()
	if got := e.Expand("[{{ nothing.here }}]", map[string]any{}); got != "[]" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandMultipleTokens(t *testing.T) {
	e := newTestExpander()
	ctx := map[string]any{
		"invoice": map[string]any{"number": "INV-7", "total": float64(99)},
	}
	got := e.Expand("{{ invoice.number }} / {{ formatCurrency invoice.total }}", ctx)
	if got != "INV-7 / 99.00" {
		t.Fatalf("got %q", got)
	}
}
