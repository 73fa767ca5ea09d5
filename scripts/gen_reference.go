package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type constValue struct {
	Name  string
	Value string
}

type structField struct {
	Name  string
	Type  string
	YAML  string
	Notes string
}

func main() {
	var configOut string
	var telemetryOut string
	flag.StringVar(&configOut, "config-out", "docs/reference/config.md", "output markdown path for the config file reference")
	flag.StringVar(&telemetryOut, "telemetry-out", "docs/reference/telemetry.md", "output markdown path for statuses and counters")
	flag.Parse()

	root, err := os.Getwd()
	if err != nil {
		fail(err)
	}

	if err := writeFile(configOut, func() ([]byte, error) { return generateConfigReference(root) }); err != nil {
		fail(err)
	}
	if err := writeFile(telemetryOut, func() ([]byte, error) { return generateTelemetryReference(root) }); err != nil {
		fail(err)
	}
}

func writeFile(path string, gen func() ([]byte, error)) error {
	content, err := gen()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func generateConfigReference(root string) ([]byte, error) {
	structs, err := collectStructFields(filepath.Join(root, "internal", "config", "config.go"), []string{"Config", "Server", "Log", "Metrics", "Trace"})
	if err != nil {
		return nil, err
	}
	policyStructs, err := collectStructFields(filepath.Join(root, "policy", "schema.go"), []string{"WatchPolicy"})
	if err != nil {
		return nil, err
	}
	for k, v := range policyStructs {
		structs[k] = v
	}

	defaults, err := collectConstValues(filepath.Join(root, "policy", "schema.go"), "Default")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!-- Generated by scripts/gen_reference.go; do not edit by hand. -->\n")
	buf.WriteString("# Config file reference\n\n")
	buf.WriteString("Generated from: `internal/config/config.go`, `policy/schema.go`.\n\n")

	writeStruct(&buf, "config.Config", structs["Config"])
	writeStruct(&buf, "config.Server (`server`)", structs["Server"])
	writeStruct(&buf, "policy.WatchPolicy (`watch`)", structs["WatchPolicy"])
	writeStruct(&buf, "config.Log (`log`)", structs["Log"])
	writeStruct(&buf, "config.Metrics (`metrics`)", structs["Metrics"])
	writeStruct(&buf, "config.Trace (`trace`)", structs["Trace"])

	writeConsts(&buf, "Policy defaults", defaults)
	return buf.Bytes(), nil
}

func generateTelemetryReference(root string) ([]byte, error) {
	counters, err := collectConstValues(filepath.Join(root, "metrics", "extract.go"), "")
	if err != nil {
		return nil, err
	}
	statuses, err := collectStatusNames(filepath.Join(root, "job", "types.go"))
	if err != nil {
		return nil, err
	}
	var promNames []string
	for _, file := range []string{"sink.go", "observer.go"} {
		names, err := collectMetricNames(filepath.Join(root, "integrations", "promwatch", file))
		if err != nil {
			return nil, err
		}
		promNames = append(promNames, names...)
	}
	sort.Strings(promNames)

	var buf bytes.Buffer
	buf.WriteString("<!-- Generated by scripts/gen_reference.go; do not edit by hand. -->\n")
	buf.WriteString("# Statuses and counters\n\n")
	buf.WriteString("Generated from: `job/types.go`, `metrics/extract.go`, `integrations/promwatch/`.\n\n")

	buf.WriteString("## Job statuses\n\n")
	buf.WriteString("These values appear in `watch.Result.FinalStatus` and `watch.JobFailedError.Status`.\n\n")
	for _, s := range statuses {
		buf.WriteString("- `" + s + "`\n")
	}
	buf.WriteString("\n")

	writeConsts(&buf, "Counter samples", counters)

	buf.WriteString("## Prometheus metrics\n\n")
	for _, name := range promNames {
		buf.WriteString("- `" + name + "`\n")
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func collectStructFields(path string, names []string) (map[string][]structField, error) {
	want := make(map[string]struct{})
	for _, name := range names {
		want[name] = struct{}{}
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]structField)
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if _, ok := want[ts.Name.Name]; !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			fields := make([]structField, 0, len(st.Fields.List))
			for _, field := range st.Fields.List {
				yamlTag := ""
				if field.Tag != nil {
					if tag, err := strconv.Unquote(field.Tag.Value); err == nil {
						yamlTag = strings.Split(reflect.StructTag(tag).Get("yaml"), ",")[0]
					}
				}
				for _, name := range field.Names {
					fields = append(fields, structField{
						Name:  name.Name,
						Type:  exprString(field.Type),
						YAML:  yamlTag,
						Notes: joinComments(field.Doc, field.Comment),
					})
				}
			}
			out[ts.Name.Name] = fields
		}
	}
	return out, nil
}

// collectConstValues returns the constants in path whose names start with
// prefix, in declaration order.
func collectConstValues(path, prefix string) ([]constValue, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	var values []constValue
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if !strings.HasPrefix(name.Name, prefix) || !name.IsExported() || len(vs.Values) <= i {
					continue
				}
				values = append(values, constValue{Name: name.Name, Value: exprString(vs.Values[i])})
			}
		}
	}
	return values, nil
}

// collectStatusNames reads the string literals returned by Status.String.
func collectStatusNames(path string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != "String" || fn.Recv == nil {
			continue
		}
		if recv, ok := fn.Recv.List[0].Type.(*ast.Ident); !ok || recv.Name != "Status" {
			continue
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			ret, ok := n.(*ast.ReturnStmt)
			if !ok || len(ret.Results) != 1 {
				return true
			}
			if val, ok := stringLiteral(ret.Results[0]); ok {
				out = append(out, val)
			}
			return true
		})
	}
	return out, nil
}

// collectMetricNames finds every `Name: "..."` in a prometheus opts literal.
func collectMetricNames(path string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	var out []string
	ast.Inspect(f, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.KeyValueExpr:
			if key, ok := v.Key.(*ast.Ident); ok && key.Name == "Name" {
				if val, ok := stringLiteral(v.Value); ok {
					out = append(out, val)
				}
			}
		case *ast.CallExpr:
			// streamCounter("name", "help")
			if fn, ok := v.Fun.(*ast.Ident); ok && fn.Name == "streamCounter" && len(v.Args) > 0 {
				if val, ok := stringLiteral(v.Args[0]); ok {
					out = append(out, val)
				}
			}
		}
		return true
	})
	return out, nil
}

func stringLiteral(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	val, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return val, true
}

func exprString(expr ast.Expr) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, token.NewFileSet(), expr)
	return buf.String()
}

func joinComments(groups ...*ast.CommentGroup) string {
	var parts []string
	for _, g := range groups {
		if g == nil {
			continue
		}
		text := strings.TrimSpace(g.Text())
		if text != "" {
			parts = append(parts, strings.ReplaceAll(text, "\n", " "))
		}
	}
	return strings.Join(parts, " ")
}

func writeStruct(buf *bytes.Buffer, title string, fields []structField) {
	if len(fields) == 0 {
		return
	}
	buf.WriteString("### " + title + "\n\n")
	buf.WriteString("| Key | Field | Type | Notes |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, f := range fields {
		key := f.YAML
		if key == "" {
			key = "-"
		}
		buf.WriteString("| `" + key + "` | `" + f.Name + "` | `" + f.Type + "` | " + f.Notes + " |\n")
	}
	buf.WriteString("\n")
}

func writeConsts(buf *bytes.Buffer, title string, values []constValue) {
	if len(values) == 0 {
		return
	}
	buf.WriteString("## " + title + "\n\n")
	buf.WriteString("| Name | Value |\n")
	buf.WriteString("|---|---|\n")
	for _, v := range values {
		buf.WriteString("| `" + v.Name + "` | `" + v.Value + "` |\n")
	}
	buf.WriteString("\n")
}
