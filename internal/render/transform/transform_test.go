package transform

import (
	"regexp"
	"testing"
	"time"

	"github.com/fixwell/docforge/internal/clock"
	"go.uber.org/zap"
)

func newTestTransformer() *Transformer {
	fixed := clock.Fixed(time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC))
	return NewTransformer(fixed, zap.NewNop())
}

func sampleInvoice() map[string]any {
	return map[string]any{
		"number":          "INV-100",
		"isDraft":         true,
		"internalNotes":   "margin is thin",
		"paymentAttempts": []any{map[string]any{"status": "failed"}},
		"items": []any{
			map[string]any{
				"itemType":    "product",
				"description": "Phone Case",
				"quantity":    float64(1),
				"unitPrice":   float64(20),
				"finalPrice":  float64(20),
				"costPrice":   float64(8),
				"supplierId":  "SUP-9",
			},
		},
	}
}

func sampleRepairJob() map[string]any {
	return map[string]any{
		"jobId":           "JOB-77",
		"technicianNotes": "customer dropped it twice",
		"jobSheet": []any{
			map[string]any{
				"itemType":    "service",
				"description": "Screen Repair",
				"quantity":    float64(1),
				"unitPrice":   float64(90),
			},
			map[string]any{
				"itemType":    "part",
				"description": "LCD Panel",
				"costPrice":   float64(35),
				"quantity":    float64(1),
			},
		},
	}
}

func TestTransformRejectsUnknownStyle(t *testing.T) {
	tr := newTestTransformer()
	if _, err := tr.Transform(sampleInvoice(), Style("director_copy")); err != ErrInvalidStyle {
		t.Fatalf("expected ErrInvalidStyle, got %v", err)
	}
}

func TestTransformDoesNotMutateOriginal(t *testing.T) {
	tr := newTestTransformer()
	original := sampleRepairJob()
	if _, err := tr.Transform(original, StyleCustomerCopy); err != nil {
		t.Fatal(err)
	}
	sheet := original["jobSheet"].([]any)
	if len(sheet) != 2 {
		t.Fatalf("original jobSheet mutated: %d entries", len(sheet))
	}
	first := sheet[0].(map[string]any)
	if _, consolidated := first["consolidated"]; consolidated {
		t.Fatalf("original entry mutated")
	}
}

func TestCustomerCopyRemovesInternalFields(t *testing.T) {
	tr := newTestTransformer()
	out, err := tr.Transform(sampleInvoice(), StyleCustomerCopy)
	if err != nil {
		t.Fatal(err)
	}

	for _, field := range []string{"paymentAttempts", "isDraft", "internalNotes"} {
		if _, ok := out[field]; ok {
			t.Errorf("root field %q must be removed from customer copy", field)
		}
	}
	for _, raw := range out["items"].([]any) {
		item := raw.(map[string]any)
		for _, field := range customerEntryFields {
			if _, ok := item[field]; ok {
				t.Errorf("entry field %q must be removed from customer copy", field)
			}
		}
		if _, ok := item["finalPrice"]; !ok {
			t.Errorf("customer entries must carry a single finalPrice total")
		}
	}
}

func TestCustomerCopyConsolidatesJobSheet(t *testing.T) {
	tr := newTestTransformer()
	out, err := tr.Transform(sampleRepairJob(), StyleCustomerCopy)
	if err != nil {
		t.Fatal(err)
	}
	sheet := out["jobSheet"].([]any)
	if len(sheet) != 1 {
		t.Fatalf("expected one consolidated entry, got %d", len(sheet))
	}
	entry := sheet[0].(map[string]any)
	if entry["consolidated"] != true {
		t.Fatalf("expected consolidated entry")
	}
	if got := entry["finalPrice"].(float64); got != 125 {
		t.Fatalf("finalPrice = %v, want 125", got)
	}
	// Cost breakdown survives consolidation but individual cost fields do not.
	if _, ok := entry["costPrice"]; ok {
		t.Fatalf("costPrice leaked into customer copy")
	}
}

func TestTechnicianCopyPreservesFieldsAndAddsNote(t *testing.T) {
	tr := newTestTransformer()
	out, err := tr.Transform(sampleRepairJob(), StyleTechnicianCopy)
	if err != nil {
		t.Fatal(err)
	}
	if out["technicianNotes"] != "customer dropped it twice" {
		t.Fatalf("technician copy must preserve internal fields")
	}
	sheet := out["jobSheet"].([]any)
	if len(sheet) != 2 {
		t.Fatalf("technician copy must not consolidate, got %d entries", len(sheet))
	}
	if _, ok := out["copyNote"].(string); !ok {
		t.Fatalf("technician copy must carry the informational note")
	}
}

func TestAuditCopyDigestAndFlags(t *testing.T) {
	tr := newTestTransformer()
	out, err := tr.Transform(sampleRepairJob(), StyleAuditCopy)
	if err != nil {
		t.Fatal(err)
	}

	digest, ok := out["auditDigest"].(string)
	if !ok || !regexp.MustCompile(`^[0-9a-f]{12}$`).MatchString(digest) {
		t.Fatalf("expected 12-char hex digest, got %v", out["auditDigest"])
	}

	flags := out["complianceFlags"].([]string)
	if len(flags) == 0 {
		t.Fatalf("complianceFlags must never be empty")
	}
	// No signature, no photos, no technician on the sample job.
	want := map[string]bool{
		"MISSING_CUSTOMER_SIGNATURE": true,
		"NO_BEFORE_PHOTOS":           true,
		"NO_TECHNICIAN_ASSIGNED":     true,
	}
	for _, flag := range flags {
		if !want[flag] {
			t.Errorf("unexpected flag %q", flag)
		}
		delete(want, flag)
	}
	if len(want) != 0 {
		t.Errorf("missing flags: %v", want)
	}

	if out["complianceStandard"] != ComplianceStandard {
		t.Errorf("repair job audit copy must carry the compliance standard")
	}
	code, _ := out["traceabilityCode"].(string)
	if !regexp.MustCompile(`^TRC-20260304103000-[0-9A-F]{8}$`).MatchString(code) {
		t.Errorf("unexpected traceability code %q", code)
	}
}

func TestAuditCopyCompliantJob(t *testing.T) {
	tr := newTestTransformer()
	job := sampleRepairJob()
	job["customerSignature"] = "data:image/png;base64,iVBOR"
	job["assignedTechnician"] = "tech-4"
	job["photos"] = map[string]any{"before": []any{"p1.jpg"}}
	job["qcResult"] = map[string]any{"status": "passed"}

	out, err := tr.Transform(job, StyleAuditCopy)
	if err != nil {
		t.Fatal(err)
	}
	flags := out["complianceFlags"].([]string)
	if len(flags) != 1 || flags[0] != "COMPLIANT" {
		t.Fatalf("expected [COMPLIANT], got %v", flags)
	}
}

func TestAuditCopyQCFailedFlag(t *testing.T) {
	tr := newTestTransformer()
	job := sampleRepairJob()
	job["qcResult"] = map[string]any{"status": "failed"}

	out, err := tr.Transform(job, StyleAuditCopy)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, flag := range out["complianceFlags"].([]string) {
		if flag == "QC_FAILED" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected QC_FAILED flag")
	}
}

func TestUnknownShapePassesThrough(t *testing.T) {
	tr := newTestTransformer()
	record := map[string]any{"what": "ever", "n": float64(3)}
	out, err := tr.Transform(record, StyleCustomerCopy)
	if err != nil {
		t.Fatal(err)
	}
	if out["what"] != "ever" || out["n"] != float64(3) {
		t.Fatalf("unknown shape must pass through, got %v", out)
	}
	if _, ok := out["auditDigest"]; ok {
		t.Fatalf("unknown shape must not get style metadata")
	}
}

func TestDetectKind(t *testing.T) {
	if got := DetectKind(sampleInvoice()); got != KindInvoice {
		t.Errorf("invoice detection failed: %v", got)
	}
	if got := DetectKind(sampleRepairJob()); got != KindRepairJob {
		t.Errorf("repair job detection failed: %v", got)
	}
	if got := DetectKind(map[string]any{"x": 1}); got != KindUnknown {
		t.Errorf("unknown detection failed: %v", got)
	}
}

func TestDeepCloneIsStructural(t *testing.T) {
	original := map[string]any{
		"nested": map[string]any{"list": []any{map[string]any{"v": float64(1)}}},
	}
	cloned := CloneRecord(original)
	cloned["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["v"] = float64(9)
	if original["nested"].(map[string]any)["list"].([]any)[0].(map[string]any)["v"] != float64(1) {
		t.Fatalf("clone shares structure with original")
	}
}
