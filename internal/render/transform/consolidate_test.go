package transform

import (
	"math"
	"testing"
)

func entry(fields map[string]any) map[string]any { return fields }

func jobWithSheet(sheet []any) map[string]any {
	return map[string]any{
		"jobId":    "JOB-001",
		"jobSheet": sheet,
	}
}

func sumFinalPrices(t *testing.T, entries []any) float64 {
	t.Helper()
	var total float64
	for _, raw := range entries {
		e, ok := raw.(map[string]any)
		if !ok {
			t.Fatalf("non-map entry in output: %v", raw)
		}
		total += finalPriceOf(e)
	}
	return total
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Screen  Repair", "screen_repair"},
		{"screen_repair", "screen_repair"},
		{"  Screen Repair!  ", "screen_repair"},
		{"SCREEN REPAIR", "screen_repair"},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	// Idempotent.
	if got := NormalizeKey(NormalizeKey("Screen  Repair")); got != "screen_repair" {
		t.Errorf("normalize not idempotent: %q", got)
	}
}

func TestConsolidateJobSheetSequenceAttribution(t *testing.T) {
	job := jobWithSheet([]any{
		entry(map[string]any{"itemType": "service", "description": "Service A", "quantity": float64(1), "unitPrice": float64(100)}),
		entry(map[string]any{"itemType": "part", "description": "P1", "costPrice": float64(20), "quantity": float64(2)}),
		entry(map[string]any{"itemType": "labor", "description": "L1", "laborHours": float64(1.5), "laborRate": float64(40)}),
		entry(map[string]any{"itemType": "service", "description": "Service B", "quantity": float64(1), "unitPrice": float64(50)}),
		entry(map[string]any{"itemType": "part", "description": "P2", "costPrice": float64(10), "quantity": float64(1)}),
	})

	ConsolidateJobSheet(job)
	sheet := job["jobSheet"].([]any)
	if len(sheet) != 2 {
		t.Fatalf("expected 2 consolidated entries, got %d", len(sheet))
	}

	first := sheet[0].(map[string]any)
	if first["description"] != "Service A" {
		t.Fatalf("expected Service A first, got %v", first["description"])
	}
	details := first["consolidationDetails"].(map[string]any)
	if got := details["partsTotal"].(float64); got != 40 {
		t.Errorf("bucket A partsTotal = %v, want 40", got)
	}
	if got := details["laborTotal"].(float64); got != 60 {
		t.Errorf("bucket A laborTotal = %v, want 60", got)
	}
	if got := first["finalPrice"].(float64); got != 200 {
		t.Errorf("bucket A finalPrice = %v, want 200", got)
	}

	second := sheet[1].(map[string]any)
	secondDetails := second["consolidationDetails"].(map[string]any)
	if got := secondDetails["partsTotal"].(float64); got != 10 {
		t.Errorf("bucket B partsTotal = %v, want 10", got)
	}
	if got := second["finalPrice"].(float64); got != 60 {
		t.Errorf("bucket B finalPrice = %v, want 60", got)
	}
}

func TestConsolidateJobSheetValuePreserving(t *testing.T) {
	job := jobWithSheet([]any{
		entry(map[string]any{"itemType": "service", "description": "Repair", "quantity": float64(2), "unitPrice": float64(75)}),
		entry(map[string]any{"itemType": "part", "description": "Battery", "costPrice": float64(30), "quantity": float64(1)}),
		entry(map[string]any{"itemType": "accessory", "description": "Case", "quantity": float64(1), "unitPrice": float64(15), "finalPrice": float64(15)}),
	})
	job["troubleshootFee"] = map[string]any{"amount": float64(25), "status": "pending"}

	ConsolidateJobSheet(job)
	sheet := job["jobSheet"].([]any)

	// 2*75 + 30 + 15 pass-through + 25 fee.
	want := 150.0 + 30 + 15 + 25
	if got := sumFinalPrices(t, sheet); math.Abs(got-want) > 1e-9 {
		t.Fatalf("total after consolidation = %v, want %v", got, want)
	}
	if _, ok := job["troubleshootFee"]; ok {
		t.Fatalf("root troubleshoot fee should be cleared after folding")
	}

	first := sheet[0].(map[string]any)
	details := first["consolidationDetails"].(map[string]any)
	if got := details["troubleshootFee"].(float64); got != 25 {
		t.Fatalf("fee not recorded in consolidation details: %v", got)
	}
}

func TestConsolidateJobSheetWaivedFeeIgnored(t *testing.T) {
	job := jobWithSheet([]any{
		entry(map[string]any{"itemType": "service", "description": "Repair", "quantity": float64(1), "unitPrice": float64(100)}),
	})
	job["troubleshootFee"] = map[string]any{"amount": float64(25), "status": "waived"}

	ConsolidateJobSheet(job)
	sheet := job["jobSheet"].([]any)
	if got := sumFinalPrices(t, sheet); got != 100 {
		t.Fatalf("waived fee must not change totals, got %v", got)
	}
}

func TestConsolidateJobSheetOrphanLinesPassThrough(t *testing.T) {
	job := jobWithSheet([]any{
		entry(map[string]any{"itemType": "part", "description": "Loose part", "costPrice": float64(5), "quantity": float64(1), "unitPrice": float64(8), "finalPrice": float64(8)}),
		entry(map[string]any{"itemType": "service", "description": "Fix", "quantity": float64(1), "unitPrice": float64(60)}),
	})

	ConsolidateJobSheet(job)
	sheet := job["jobSheet"].([]any)
	if len(sheet) != 2 {
		t.Fatalf("expected consolidated + pass-through, got %d entries", len(sheet))
	}
	last := sheet[1].(map[string]any)
	if last["description"] != "Loose part" {
		t.Fatalf("orphan part should pass through unchanged, got %v", last["description"])
	}
}

func TestConsolidateJobSheetFeeWithoutBucketsStays(t *testing.T) {
	job := jobWithSheet([]any{
		entry(map[string]any{"itemType": "part", "description": "Cable", "costPrice": float64(5), "quantity": float64(1)}),
	})
	job["troubleshootFee"] = map[string]any{"amount": float64(25), "status": "pending"}

	ConsolidateJobSheet(job)
	if _, ok := job["troubleshootFee"]; !ok {
		t.Fatalf("fee must remain when nothing was consolidated")
	}
}

func TestConsolidateInvoiceItemsDescriptionAttribution(t *testing.T) {
	invoice := map[string]any{
		"items": []any{
			entry(map[string]any{"itemType": "part", "description": "Screen Repair", "costPrice": float64(40), "quantity": float64(1)}),
			entry(map[string]any{"itemType": "service", "description": "Screen  Repair", "isService": true, "quantity": float64(1), "unitPrice": float64(120), "finalPrice": float64(120)}),
			entry(map[string]any{"itemType": "product", "description": "Phone Case", "quantity": float64(2), "unitPrice": float64(10), "finalPrice": float64(20)}),
		},
	}

	ConsolidateInvoiceItems(invoice)
	items := invoice["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected service + pass-through, got %d", len(items))
	}

	service := items[0].(map[string]any)
	if service["consolidated"] != true {
		t.Fatalf("expected consolidated entry first")
	}
	details := service["consolidationDetails"].(map[string]any)
	if got := details["partsTotal"].(float64); got != 40 {
		t.Errorf("partsTotal = %v, want 40 (matched despite position before the service)", got)
	}
	if got := service["finalPrice"].(float64); got != 160 {
		t.Errorf("finalPrice = %v, want 160", got)
	}

	if got := invoice["subTotal"].(float64); got != 180 {
		t.Errorf("recomputed subTotal = %v, want 180", got)
	}
	if got := invoice["totalAmount"].(float64); got != 180 {
		t.Errorf("recomputed totalAmount = %v, want 180", got)
	}
}

func TestConsolidateInvoiceEmbeddedCosts(t *testing.T) {
	invoice := map[string]any{
		"items": []any{
			entry(map[string]any{
				"itemType":    "service",
				"description": "Board Swap",
				"isService":   true,
				"quantity":    float64(1),
				"unitPrice":   float64(80),
				"finalPrice":  float64(80),
				"requiredParts": []any{
					map[string]any{"costPrice": float64(55), "quantity": float64(1)},
				},
				"laborHours": float64(2),
				"laborRate":  float64(35),
			}),
		},
	}

	ConsolidateInvoiceItems(invoice)
	items := invoice["items"].([]any)
	service := items[0].(map[string]any)
	details := service["consolidationDetails"].(map[string]any)
	if got := details["totalCost"].(float64); got != 80+55+70 {
		t.Fatalf("totalCost = %v, want 205", got)
	}
}
