package transform

import (
	"regexp"
	"strings"
)

// Consolidation collapses a job's scattered parts and labor lines into a
// single billable service entry per service, preserving total monetary
// value. Repair jobs attribute by array position (a part or labor line
// belongs to the most recent service line above it); invoices attribute
// by normalized description across the whole item list. The two
// strategies are kept deliberately distinct; see DESIGN.md.

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	keyFilter     = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeKey canonicalizes a description for bucket matching:
// trimmed, lowercased, whitespace collapsed to "_", everything outside
// [a-z0-9_] stripped.
func NormalizeKey(description string) string {
	key := strings.ToLower(strings.TrimSpace(description))
	key = whitespaceRun.ReplaceAllString(key, "_")
	return keyFilter.ReplaceAllString(key, "")
}

type partCost struct {
	costPrice float64
	quantity  float64
}

type laborCost struct {
	hours float64
	rate  float64
}

type serviceBucket struct {
	description string
	basePrice   float64
	quantity    float64
	parts       []partCost
	labor       []laborCost
}

func (b *serviceBucket) partsTotal() float64 {
	var total float64
	for _, p := range b.parts {
		total += p.costPrice * p.quantity
	}
	return total
}

func (b *serviceBucket) laborTotal() float64 {
	var total float64
	for _, l := range b.labor {
		total += l.hours * l.rate
	}
	return total
}

func (b *serviceBucket) entry() map[string]any {
	partsTotal := b.partsTotal()
	laborTotal := b.laborTotal()
	totalCost := b.basePrice + partsTotal + laborTotal

	quantity := b.quantity
	if quantity == 0 {
		quantity = 1
	}

	return map[string]any{
		"description":  b.description,
		"quantity":     quantity,
		"unitPrice":    totalCost / quantity,
		"finalPrice":   totalCost,
		"itemType":     "service",
		"consolidated": true,
		"consolidationDetails": map[string]any{
			"basePrice":  b.basePrice,
			"partsTotal": partsTotal,
			"laborTotal": laborTotal,
			"totalCost":  totalCost,
		},
	}
}

// ConsolidateJobSheet rewrites job["jobSheet"] in place: one consolidated
// entry per service (in first-seen order) followed by the untouched
// non-service pass-through lines. A pending troubleshoot fee is folded
// into the first consolidated entry exactly once and the root fee
// cleared so downstream totals never count it twice.
func ConsolidateJobSheet(job map[string]any) {
	sheet, ok := job["jobSheet"].([]any)
	if !ok || len(sheet) == 0 {
		return
	}

	buckets := map[string]*serviceBucket{}
	order := []string{}
	nonService := []any{}
	currentKey := ""

	for _, raw := range sheet {
		entry, ok := raw.(map[string]any)
		if !ok {
			nonService = append(nonService, raw)
			continue
		}
		itemType, _ := entry["itemType"].(string)
		description, _ := entry["description"].(string)

		switch itemType {
		case "service":
			key := NormalizeKey(description)
			currentKey = key
			bucket, exists := buckets[key]
			if !exists {
				bucket = &serviceBucket{description: description}
				buckets[key] = bucket
				order = append(order, key)
			}
			bucket.basePrice += asFloat(entry["unitPrice"]) * quantityOf(entry)
			bucket.quantity += quantityOf(entry)
		case "part":
			if currentKey == "" {
				nonService = append(nonService, raw)
				continue
			}
			buckets[currentKey].parts = append(buckets[currentKey].parts, partCost{
				costPrice: costPriceOf(entry),
				quantity:  quantityOf(entry),
			})
		case "labor":
			if currentKey == "" {
				nonService = append(nonService, raw)
				continue
			}
			buckets[currentKey].labor = append(buckets[currentKey].labor, laborCost{
				hours: laborHoursOf(entry),
				rate:  laborRateOf(entry),
			})
		default:
			nonService = append(nonService, raw)
		}
	}

	consolidated := make([]any, 0, len(order))
	for _, key := range order {
		consolidated = append(consolidated, buckets[key].entry())
	}

	applyTroubleshootFee(job, consolidated)

	job["jobSheet"] = append(consolidated, nonService...)
}

// applyTroubleshootFee adds a pending fee to the first consolidated
// entry. The index-0 rule mirrors the established billing behavior even
// when several consolidated entries exist.
func applyTroubleshootFee(job map[string]any, consolidated []any) {
	if len(consolidated) == 0 {
		return
	}
	fee, ok := job["troubleshootFee"].(map[string]any)
	if !ok {
		return
	}
	status, _ := fee["status"].(string)
	amount := asFloat(fee["amount"])
	if status == "waived" || amount == 0 {
		return
	}

	first := consolidated[0].(map[string]any)
	quantity := asFloat(first["quantity"])
	if quantity == 0 {
		quantity = 1
	}
	first["unitPrice"] = asFloat(first["unitPrice"]) + amount/quantity
	first["finalPrice"] = asFloat(first["finalPrice"]) + amount
	details := first["consolidationDetails"].(map[string]any)
	details["troubleshootFee"] = amount

	delete(job, "troubleshootFee")
}

// ConsolidateInvoiceItems rewrites invoice["items"]: items flagged as
// services seed buckets (including their embedded parts and labor), then
// separately-added part/labor items fold into the bucket whose
// normalized description matches. The subtotal and total are recomputed
// as plain sums; discounts and taxes are not re-applied here.
func ConsolidateInvoiceItems(invoice map[string]any) {
	items, ok := invoice["items"].([]any)
	if !ok || len(items) == 0 {
		return
	}

	buckets := map[string]*serviceBucket{}
	order := []string{}

	for _, raw := range items {
		entry, ok := raw.(map[string]any)
		if !ok || !isService(entry) {
			continue
		}
		description, _ := entry["description"].(string)
		key := NormalizeKey(description)
		bucket, exists := buckets[key]
		if !exists {
			bucket = &serviceBucket{description: description}
			buckets[key] = bucket
			order = append(order, key)
		}
		bucket.basePrice += asFloat(entry["unitPrice"]) * quantityOf(entry)
		bucket.quantity += quantityOf(entry)
		absorbEmbeddedCosts(bucket, entry)
	}

	passThrough := []any{}
	for _, raw := range items {
		entry, ok := raw.(map[string]any)
		if !ok {
			passThrough = append(passThrough, raw)
			continue
		}
		if isService(entry) {
			continue
		}
		itemType, _ := entry["itemType"].(string)
		description, _ := entry["description"].(string)
		bucket := buckets[NormalizeKey(description)]
		if bucket == nil {
			passThrough = append(passThrough, raw)
			continue
		}
		switch itemType {
		case "part":
			bucket.parts = append(bucket.parts, partCost{
				costPrice: costPriceOf(entry),
				quantity:  quantityOf(entry),
			})
		case "labor":
			bucket.labor = append(bucket.labor, laborCost{
				hours: laborHoursOf(entry),
				rate:  laborRateOf(entry),
			})
		default:
			passThrough = append(passThrough, raw)
		}
	}

	out := make([]any, 0, len(order)+len(passThrough))
	for _, key := range order {
		out = append(out, buckets[key].entry())
	}
	out = append(out, passThrough...)
	invoice["items"] = out

	var total float64
	for _, raw := range out {
		if entry, ok := raw.(map[string]any); ok {
			total += finalPriceOf(entry)
		}
	}
	invoice["subTotal"] = total
	invoice["totalAmount"] = total
}

func absorbEmbeddedCosts(bucket *serviceBucket, entry map[string]any) {
	if required, ok := entry["requiredParts"].([]any); ok {
		for _, raw := range required {
			part, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			bucket.parts = append(bucket.parts, partCost{
				costPrice: costPriceOf(part),
				quantity:  quantityOf(part),
			})
		}
	}
	hours := asFloat(entry["laborHours"])
	rate := asFloat(entry["laborRate"])
	if hours > 0 && rate > 0 {
		bucket.labor = append(bucket.labor, laborCost{hours: hours, rate: rate})
	}
}

func isService(entry map[string]any) bool {
	if flagged, ok := entry["isService"].(bool); ok && flagged {
		return true
	}
	itemType, _ := entry["itemType"].(string)
	return itemType == "service"
}

func quantityOf(entry map[string]any) float64 {
	q := asFloat(entry["quantity"])
	if q == 0 {
		return 1
	}
	return q
}

func costPriceOf(entry map[string]any) float64 {
	if cost := asFloat(entry["costPrice"]); cost != 0 {
		return cost
	}
	return asFloat(entry["unitPrice"])
}

func laborHoursOf(entry map[string]any) float64 {
	if hours := asFloat(entry["laborHours"]); hours != 0 {
		return hours
	}
	return quantityOf(entry)
}

func laborRateOf(entry map[string]any) float64 {
	if rate := asFloat(entry["laborRate"]); rate != 0 {
		return rate
	}
	return asFloat(entry["unitPrice"])
}

func finalPriceOf(entry map[string]any) float64 {
	if price, ok := entry["finalPrice"]; ok {
		return asFloat(price)
	}
	return asFloat(entry["unitPrice"]) * quantityOf(entry)
}

func asFloat(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return 0
	}
}
