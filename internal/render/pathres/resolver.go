// Package pathres implements the template binding micro-language: dotted
// and bracketed paths resolved against nested records, and {{ ... }}
// token expansion with a small fixed helper set.
//
// Resolution never fails. A malformed or missing path degrades to an
// empty string so one bad binding blanks one element instead of aborting
// the whole render.
package pathres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// step is one resolved hop in a parsed path.
type step struct {
	key   string
	index int
	isIdx bool
}

// program is a path parsed once and reused across renders. When flatten
// is set, steps address the array and flattenSteps address the field
// read from every element.
type program struct {
	steps        []step
	flatten      bool
	flattenSteps []step
}

// Resolver resolves path expressions against nested records. Parsed
// programs are cached so repeated renders of one template do not
// re-parse the same bindings.
type Resolver struct {
	programs *gocache.Cache
}

func NewResolver() *Resolver {
	return &Resolver{
		programs: gocache.New(time.Hour, 2*time.Hour),
	}
}

// Resolve evaluates path against ctx. Missing segments yield "", never
// an error. A path containing the flatten marker "[]" returns the
// newline-joined field values of every array element.
func (r *Resolver) Resolve(ctx map[string]any, path string) any {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	prog := r.compile(path)
	if prog == nil {
		return ""
	}

	if prog.flatten {
		return flattenResolve(ctx, prog)
	}

	value := walk(any(ctx), prog.steps)
	if value == nil {
		return ""
	}
	return value
}

// ResolveString resolves path and renders the result as display text.
func (r *Resolver) ResolveString(ctx map[string]any, path string) string {
	return Stringify(r.Resolve(ctx, path))
}

func (r *Resolver) compile(path string) *program {
	if cached, ok := r.programs.Get(path); ok {
		return cached.(*program)
	}
	prog := parse(path)
	r.programs.Set(path, prog, gocache.DefaultExpiration)
	return prog
}

func parse(path string) *program {
	prog := &program{}
	current := &prog.steps

	for _, segment := range strings.Split(path, ".") {
		for segment != "" {
			open := strings.IndexByte(segment, '[')
			if open < 0 {
				*current = append(*current, step{key: segment})
				break
			}
			if open > 0 {
				*current = append(*current, step{key: segment[:open]})
			}
			closing := strings.IndexByte(segment, ']')
			if closing < open {
				// Unbalanced bracket: treat the remainder as a plain key.
				*current = append(*current, step{key: segment[open:]})
				break
			}
			inner := segment[open+1 : closing]
			if inner == "" {
				// Flatten marker: everything after addresses the element field.
				prog.flatten = true
				current = &prog.flattenSteps
			} else if idx, err := strconv.Atoi(inner); err == nil {
				*current = append(*current, step{index: idx, isIdx: true})
			} else {
				*current = append(*current, step{key: inner})
			}
			segment = segment[closing+1:]
		}
	}
	return prog
}

func walk(value any, steps []step) any {
	for _, s := range steps {
		switch node := value.(type) {
		case map[string]any:
			if s.isIdx {
				return nil
			}
			next, ok := node[s.key]
			if !ok {
				return nil
			}
			value = next
		case []any:
			if !s.isIdx || s.index < 0 || s.index >= len(node) {
				return nil
			}
			value = node[s.index]
		default:
			return nil
		}
	}
	return value
}

func flattenResolve(ctx map[string]any, prog *program) string {
	base := walk(any(ctx), prog.steps)
	arr, ok := base.([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(arr))
	for _, element := range arr {
		parts = append(parts, Stringify(walk(element, prog.flattenSteps)))
	}
	return strings.Join(parts, "\n")
}

// Stringify renders a resolved value the way it should appear in a
// document: numbers without a trailing mantissa, nil as blank.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case time.Time:
		return typed.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", typed)
	}
}
