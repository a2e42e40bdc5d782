// Package template renders prompt templates written in Jinja/Django syntax.
package template

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/taskrouter/taskrouter-api/internal/domain"
)

// Template is a compiled prompt template.
type Template struct {
	name   string
	source string
	tpl    *pongo2.Template
	refs   []reference
}

// reference is a variable the template reads outside of any conditional block.
type reference struct {
	root string
	expr string
}

// Compile parses src. Syntax errors are reported as *domain.TemplateError.
func Compile(name, src string) (*Template, error) {
	// Prompts are plain text, so HTML autoescaping stays off.
	tpl, err := pongo2.FromString("{% autoescape off %}" + src + "{% endautoescape %}")
	if err != nil {
		return nil, &domain.TemplateError{Template: name, Err: err}
	}
	refs, err := scanReferences(src)
	if err != nil {
		return nil, &domain.TemplateError{Template: name, Err: err}
	}
	return &Template{name: name, source: src, tpl: tpl, refs: refs}, nil
}

// Render executes the template. A variable referenced outside an if block must be
// present in vars; a nil value counts as present.
func (t *Template) Render(vars map[string]any) (string, error) {
	for _, ref := range t.refs {
		if _, ok := vars[ref.root]; !ok {
			return "", &domain.TemplateError{
				Template: t.name,
				Err:      fmt.Errorf("variable %q is undefined (in %q)", ref.root, ref.expr),
			}
		}
	}
	ctx := make(pongo2.Context, len(vars))
	for k, v := range vars {
		ctx[k] = normalize(v)
	}
	out, err := t.tpl.Execute(ctx)
	if err != nil {
		return "", &domain.TemplateError{Template: t.name, Err: err}
	}
	return out, nil
}

// normalize turns integral JSON numbers into ints so they print without a fraction.
func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// Source returns the template text as written.
func (t *Template) Source() string {
	return t.source
}

// Render compiles and renders src in one step.
func Render(src string, vars map[string]any) (string, error) {
	t, err := Compile("inline", src)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

var (
	tagPattern   = regexp.MustCompile(`(?s)\{\{(.*?)\}\}|\{%-?(.*?)-?%\}`)
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
)

// builtins are names pongo2 defines inside loops.
var builtins = map[string]bool{"forloop": true, "true": true, "false": true, "none": true, "nil": true}

type scope struct {
	kind string // "if" or "for"
	vars []string
}

// scanReferences walks the tags of src and records the root variables that are read
// unconditionally.
func scanReferences(src string) ([]reference, error) {
	var (
		refs  []reference
		stack []scope
	)

	guarded := func() bool {
		for _, s := range stack {
			if s.kind == "if" {
				return true
			}
		}
		return false
	}
	bound := func(name string) bool {
		if builtins[name] {
			return true
		}
		for _, s := range stack {
			for _, v := range s.vars {
				if v == name {
					return true
				}
			}
		}
		return false
	}
	record := func(expr string) {
		expr = strings.TrimSpace(expr)
		if guarded() || strings.Contains(expr, "|default") {
			return
		}
		root := identPattern.FindString(expr)
		if root == "" || bound(root) {
			return
		}
		refs = append(refs, reference{root: root, expr: expr})
	}

	for _, m := range tagPattern.FindAllStringSubmatch(src, -1) {
		if m[1] != "" || strings.HasPrefix(m[0], "{{") {
			record(m[1])
			continue
		}

		fields := strings.Fields(m[2])
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "if":
			stack = append(stack, scope{kind: "if"})
		case "for":
			loopVars, seq, err := parseFor(fields[1:])
			if err != nil {
				return nil, err
			}
			record(seq)
			stack = append(stack, scope{kind: "for", vars: loopVars})
		case "endif", "endfor":
			want := strings.TrimPrefix(fields[0], "end")
			if len(stack) == 0 || stack[len(stack)-1].kind != want {
				return nil, fmt.Errorf("unexpected {%% %s %%}", fields[0])
			}
			stack = stack[:len(stack)-1]
		}
	}
	return refs, nil
}

// parseFor splits the arguments of a for tag into loop variables and the sequence expression.
func parseFor(args []string) ([]string, string, error) {
	for i, a := range args {
		if a != "in" {
			continue
		}
		var vars []string
		for _, v := range strings.Split(strings.Join(args[:i], ""), ",") {
			if v = strings.TrimSpace(v); v != "" {
				vars = append(vars, v)
			}
		}
		if len(vars) == 0 || i+1 >= len(args) {
			break
		}
		return vars, strings.Join(args[i+1:], " "), nil
	}
	return nil, "", fmt.Errorf("malformed for tag: %q", strings.Join(args, " "))
}
