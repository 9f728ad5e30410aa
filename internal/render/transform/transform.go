// Package transform produces audience-specific views of business
// records: customer copies with internal costs consolidated and
// redacted, technician copies annotated for the workshop, and audit
// copies stamped with a record digest and compliance flags.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fixwell/docforge/internal/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Style selects the audience view of a record.
type Style string

const (
	StyleCustomerCopy   Style = "customer_copy"
	StyleTechnicianCopy Style = "technician_copy"
	StyleAuditCopy      Style = "audit_copy"
)

// DefaultStyle is used when a render request omits the style.
const DefaultStyle = StyleCustomerCopy

func (s Style) Valid() bool {
	switch s {
	case StyleCustomerCopy, StyleTechnicianCopy, StyleAuditCopy:
		return true
	default:
		return false
	}
}

var ErrInvalidStyle = errors.New("invalid_style")

// RecordKind classifies a record by structural signature.
type RecordKind int

const (
	KindUnknown RecordKind = iota
	KindInvoice
	KindRepairJob
)

// ComplianceStandard is stamped onto repair-job audit copies.
const ComplianceStandard = "ISO9001-2015-REPAIR"

// entriesKey returns the line-entry collection field per kind.
func (k RecordKind) entriesKey() string {
	switch k {
	case KindInvoice:
		return "items"
	case KindRepairJob:
		return "jobSheet"
	default:
		return ""
	}
}

// DetectKind inspects the record shape. Invoices carry items with a
// finalPrice; repair jobs carry a jobSheet plus a job identifier.
func DetectKind(record map[string]any) RecordKind {
	if items, ok := record["items"].([]any); ok {
		for _, raw := range items {
			if entry, ok := raw.(map[string]any); ok {
				if _, has := entry["finalPrice"]; has {
					return KindInvoice
				}
			}
		}
	}
	if _, ok := record["jobSheet"].([]any); ok {
		if hasAny(record, "jobId", "ticketNumber", "jobNumber") {
			return KindRepairJob
		}
	}
	return KindUnknown
}

// styleRule is one kind+style redaction rule set.
type styleRule struct {
	entryFields []string
	rootFields  []string
}

var customerEntryFields = []string{
	"costPrice",
	"laborRate",
	"laborHours",
	"requiredParts",
	"supplierId",
	"inventoryRef",
	"internalNotes",
	"marginPercent",
}

var rules = map[RecordKind]map[Style]styleRule{
	KindInvoice: {
		StyleCustomerCopy: {
			entryFields: customerEntryFields,
			rootFields:  []string{"paymentAttempts", "isDraft", "internalNotes", "approvalChain"},
		},
		StyleTechnicianCopy: {},
		StyleAuditCopy:      {},
	},
	KindRepairJob: {
		StyleCustomerCopy: {
			entryFields: customerEntryFields,
			rootFields:  []string{"technicianNotes", "internalFlags", "isDraft"},
		},
		StyleTechnicianCopy: {},
		StyleAuditCopy:      {},
	},
}

// Transformer builds audience views. It is stateless apart from the
// injected clock used for audit traceability codes.
type Transformer struct {
	clock clock.Clock
	log   *zap.Logger
}

func NewTransformer(clk clock.Clock, log *zap.Logger) *Transformer {
	return &Transformer{clock: clk, log: log.Named("render.transform")}
}

// Transform deep-copies record and applies the style's rule set. Records
// of unknown shape pass through as an untouched copy.
func (t *Transformer) Transform(record map[string]any, style Style) (map[string]any, error) {
	if !style.Valid() {
		return nil, ErrInvalidStyle
	}

	digest := recordDigest(record)
	out := CloneRecord(record)
	kind := DetectKind(out)
	if kind == KindUnknown {
		t.log.Debug("record shape not recognized, passing through", zap.String("style", string(style)))
		return out, nil
	}

	if style == StyleCustomerCopy {
		switch kind {
		case KindInvoice:
			ConsolidateInvoiceItems(out)
		case KindRepairJob:
			ConsolidateJobSheet(out)
		}
	}

	rule := rules[kind][style]
	stripEntryFields(out, kind.entriesKey(), rule.entryFields)
	for _, field := range rule.rootFields {
		delete(out, field)
	}

	switch style {
	case StyleCustomerCopy:
		simplifyEntryPricing(out, kind.entriesKey())
	case StyleTechnicianCopy:
		out["copyNote"] = "Technician copy: retain with the job folder. Not for customer distribution."
	case StyleAuditCopy:
		out["auditDigest"] = digest
		out["complianceFlags"] = complianceFlags(record)
		if kind == KindRepairJob {
			out["complianceStandard"] = ComplianceStandard
			out["traceabilityCode"] = t.traceabilityCode()
		}
	}

	return out, nil
}

// recordDigest is a short fingerprint of the pre-transform record.
// json.Marshal sorts map keys, so the digest is canonical.
func recordDigest(record map[string]any) string {
	raw, err := json.Marshal(record)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", record))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:12]
}

// complianceFlags evaluates the audit checklist against the original
// record. An empty checklist reports COMPLIANT explicitly.
func complianceFlags(record map[string]any) []string {
	flags := []string{}

	if isBlank(record["customerSignature"]) {
		flags = append(flags, "MISSING_CUSTOMER_SIGNATURE")
	}
	if qc, ok := record["qcResult"].(map[string]any); ok {
		if status, _ := qc["status"].(string); strings.EqualFold(status, "failed") {
			flags = append(flags, "QC_FAILED")
		}
	}
	if !hasBeforePhotos(record) {
		flags = append(flags, "NO_BEFORE_PHOTOS")
	}
	if isBlank(record["assignedTechnician"]) {
		flags = append(flags, "NO_TECHNICIAN_ASSIGNED")
	}

	if len(flags) == 0 {
		return []string{"COMPLIANT"}
	}
	return flags
}

func (t *Transformer) traceabilityCode() string {
	stamp := t.clock.Now().Format("20060102150405")
	return "TRC-" + stamp + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func stripEntryFields(record map[string]any, entriesKey string, fields []string) {
	if entriesKey == "" || len(fields) == 0 {
		return
	}
	entries, ok := record[entriesKey].([]any)
	if !ok {
		return
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range fields {
			delete(entry, field)
		}
	}
}

// simplifyEntryPricing leaves each customer-facing entry with a single
// total: finalPrice is guaranteed present and breakdown fields go away.
func simplifyEntryPricing(record map[string]any, entriesKey string) {
	entries, ok := record[entriesKey].([]any)
	if !ok {
		return
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, has := entry["finalPrice"]; !has {
			entry["finalPrice"] = asFloat(entry["unitPrice"]) * quantityOf(entry)
		}
		delete(entry, "priceBreakdown")
	}
}

func hasBeforePhotos(record map[string]any) bool {
	photos, ok := record["photos"].(map[string]any)
	if !ok {
		return false
	}
	before, ok := photos["before"].([]any)
	return ok && len(before) > 0
}

func hasAny(record map[string]any, keys ...string) bool {
	for _, key := range keys {
		if !isBlank(record[key]) {
			return true
		}
	}
	return false
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case map[string]any:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}
