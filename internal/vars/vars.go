// Package vars expands `${NAME}` placeholders in path-like configuration
// values.
//
// Expansion is two-phase. Names present in a Context are resolved here.
// Every other placeholder, such as `${CMAKE_SOURCE_DIR}` or
// `${workspaceFolder}`, belongs to a downstream consumer and is left
// verbatim. A placeholder is either replaced whole or not at all.
package vars

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Names known to the engine.
const (
	VitisInstallDir = "VITIS_INSTALL_DIR"
	ProjectDir      = "PROJECT_DIR"
	ParentDir       = "PARENT_DIR"
	AppDir          = "APP_DIR"
	AppSrcDir       = "APP_SRC_DIR"
	PlatformDir     = "PLATFORM_DIR"
)

var placeholder = regexp.MustCompile(`\$\{([^${}]*)\}`)

// Context maps known variable names to their expansion. It is read-only
// after construction.
type Context struct {
	values map[string]string
	eval   *hcl.EvalContext
}

// NewContext builds a Context from name/value pairs. Values are normalized
// to forward slashes. A value that itself contains a known placeholder is
// rejected so that resolution stays idempotent.
func NewContext(values map[string]string) (*Context, error) {
	normalized := make(map[string]string, len(values))
	for name, v := range values {
		if !hclsyntax.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid variable name %q", name)
		}
		normalized[name] = toSlash(v)
	}

	for name, v := range normalized {
		for _, m := range placeholder.FindAllStringSubmatch(v, -1) {
			if _, known := normalized[strings.TrimSpace(m[1])]; known {
				return nil, fmt.Errorf("variable %s refers to ${%s}; values must be fully resolved", name, m[1])
			}
		}
	}

	vars := make(map[string]cty.Value, len(normalized))
	for name, v := range normalized {
		vars[name] = cty.StringVal(v)
	}

	return &Context{
		values: normalized,
		eval:   &hcl.EvalContext{Variables: vars},
	}, nil
}

// With returns a new Context extended with extra names. Existing names are
// overridden.
func (c *Context) With(extra map[string]string) (*Context, error) {
	merged := make(map[string]string, len(c.values)+len(extra))
	for k, v := range c.values {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return NewContext(merged)
}

// Lookup returns the value of a known name.
func (c *Context) Lookup(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Names returns the known names in sorted order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.values))
	for n := range c.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve expands every known placeholder in s and converts backslashes to
// forward slashes. Unknown placeholders are kept intact.
func (c *Context) Resolve(s string) string {
	out := placeholder.ReplaceAllStringFunc(s, func(token string) string {
		if v, ok := c.evaluate(token[2 : len(token)-1]); ok {
			return v
		}
		return token
	})
	return toSlash(out)
}

// Unresolved reports whether s still holds a placeholder, which only a
// downstream consumer can expand.
func Unresolved(s string) bool {
	return placeholder.MatchString(s)
}

// ResolveList resolves each item of a list independently.
func (c *Context) ResolveList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = c.Resolve(item)
	}
	return out
}

// evaluate treats the placeholder body as a bare HCL variable reference and
// evaluates it against the context. Anything that is not a single known
// root name, such as `env:HOME` or `a.b`, reports false.
func (c *Context) evaluate(expr string) (string, bool) {
	traversal, diags := hclsyntax.ParseTraversalAbs([]byte(expr), "", hcl.InitialPos)
	if diags.HasErrors() || len(traversal) != 1 {
		return "", false
	}
	if _, known := c.values[traversal.RootName()]; !known {
		return "", false
	}
	val, diags := traversal.TraverseAbs(c.eval)
	if diags.HasErrors() || val.IsNull() || !val.Type().Equals(cty.String) {
		return "", false
	}
	return val.AsString(), true
}

func toSlash(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}
