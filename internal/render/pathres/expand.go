package pathres

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Expander substitutes {{ path }} and {{ helper arg... }} tokens inside
// static strings. Helper names are a closed set; an unknown helper
// expands to "".
type Expander struct {
	resolver *Resolver
}

func NewExpander(resolver *Resolver) *Expander {
	return &Expander{resolver: resolver}
}

// Expand replaces every {{ ... }} token in s. A token body with no
// spaces is a plain path; otherwise the first word names a helper and
// the rest are arguments resolved against ctx.
func (e *Expander) Expand(s string, ctx map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		body := strings.TrimSpace(tokenPattern.FindStringSubmatch(token)[1])
		words := strings.Fields(body)
		if len(words) == 0 {
			return ""
		}
		if len(words) == 1 {
			return e.resolver.ResolveString(ctx, words[0])
		}
		return e.callHelper(words[0], words[1:], ctx)
	})
}

func (e *Expander) callHelper(name string, rawArgs []string, ctx map[string]any) string {
	args := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		args[i] = e.resolveArg(ctx, raw)
	}

	switch name {
	case "formatCurrency":
		if len(args) < 1 {
			return ""
		}
		return FormatCurrency(toFloat(args[0]))
	case "formatDate":
		if len(args) < 1 {
			return ""
		}
		return FormatDate(args[0])
	case "multiply":
		if len(args) < 2 {
			return ""
		}
		return Stringify(toFloat(args[0]) * toFloat(args[1]))
	case "get":
		if len(args) < 2 {
			return ""
		}
		obj, ok := args[0].(map[string]any)
		if !ok {
			return ""
		}
		return Stringify(obj[Stringify(args[1])])
	case "eq":
		if len(args) < 2 {
			return ""
		}
		return strconv.FormatBool(Stringify(args[0]) == Stringify(args[1]))
	default:
		return ""
	}
}

// resolveArg treats quoted words and bare numbers as literals; anything
// else resolves as a path (missing paths yield "").
func (e *Expander) resolveArg(ctx map[string]any, raw string) any {
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return raw[1 : len(raw)-1]
		}
	}
	if resolved := e.resolver.Resolve(ctx, raw); resolved != "" {
		return resolved
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return ""
}

// FormatCurrency renders an amount with thousands grouping and two
// decimals. The currency symbol belongs to the template's static text.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	whole := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(whole, '.')
	intPart, fracPart := whole[:dot], whole[dot:]

	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteString(intPart[i : i+3])
	}

	out := grouped.String() + fracPart
	if negative {
		return "-" + out
	}
	return out
}

// FormatDate renders a date value as yyyy-mm-dd. Accepts time.Time,
// RFC 3339 strings, plain dates, and unix epoch numbers.
func FormatDate(value any) string {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format("2006-01-02")
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, typed); err == nil {
				return parsed.Format("2006-01-02")
			}
		}
		return typed
	case float64:
		return time.Unix(int64(typed), 0).UTC().Format("2006-01-02")
	case int64:
		return time.Unix(typed, 0).UTC().Format("2006-01-02")
	default:
		return ""
	}
}

func toFloat(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return n
	default:
		return 0
	}
}
