package pyx

import "testing"

func parseOne(t *testing.T, lines Lines) *Definition {
	t.Helper()
	table, _, err := ParseDefinitions(lines)
	if err != nil {
		t.Fatalf("ParseDefinitions error: %v", err)
	}
	names := table.Names()
	if len(names) != 1 {
		t.Fatalf("expected exactly one definition, got %d: %v", len(names), names)
	}
	def, _ := table.Resolve(names[0], false)
	if def == nil {
		t.Fatalf("Resolve(%s) returned nil", names[0])
	}
	return def
}

func TestParseDefinitionsMacroInline(t *testing.T) {
	def := parseOne(t, linesOf("!macro greet(name): print(name)"))
	if def.Kind != KindMacro {
		t.Errorf("Kind = %v, want KindMacro", def.Kind)
	}
	if def.Name != "greet" {
		t.Errorf("Name = %q, want %q", def.Name, "greet")
	}
	if len(def.Params) != 1 || def.Params[0].Name != "name" {
		t.Errorf("Params = %+v", def.Params)
	}
	if contentOf(def.Body) != "print(name)\n" {
		t.Errorf("Body = %q", contentOf(def.Body))
	}
}

func TestParseDefinitionsMethodWithPlaceholder(t *testing.T) {
	lines := Lines{
		{Content: "!method obj.area(w, h):\n", File: "t", Lineno: 1},
		{Content: "    return obj.base * w * h\n", File: "t", Lineno: 2},
	}
	def := parseOne(t, lines)
	if def.Kind != KindMethod {
		t.Errorf("Kind = %v, want KindMethod", def.Kind)
	}
	if def.Placeholder == nil || def.Placeholder.Kind != PlaceholderSingle {
		t.Fatalf("Placeholder = %+v", def.Placeholder)
	}
	if def.Placeholder.Names[0] != "obj" {
		t.Errorf("Placeholder.Names = %v", def.Placeholder.Names)
	}
}

func TestParseDefinitionsDefineWithDottedPlaceholder(t *testing.T) {
	// Even a !define may carry a dotted placeholder name syntactically.
	def := parseOne(t, linesOf("!define ph.CONST: 42"))
	if def.Kind != KindDefine {
		t.Errorf("Kind = %v, want KindDefine", def.Kind)
	}
	if def.Name != "CONST" {
		t.Errorf("Name = %q, want %q", def.Name, "CONST")
	}
	if def.Placeholder == nil || def.Placeholder.Names[0] != "ph" {
		t.Errorf("Placeholder = %+v", def.Placeholder)
	}
	if len(def.Params) != 0 {
		t.Errorf("!define must never carry Params, got %+v", def.Params)
	}
}

func TestParseDefinitionsDebugPrefix(t *testing.T) {
	// Resolve in exec mode: in non-exec mode a $debug-only name resolves to
	// a tombstone, which carries no Debug flag.
	table, _, err := ParseDefinitions(linesOf("$debug !macro trace(msg): print(msg)"))
	if err != nil {
		t.Fatalf("ParseDefinitions error: %v", err)
	}
	def, _ := table.Resolve("trace", true)
	if def == nil {
		t.Fatal("Resolve(trace, exec) returned nil")
	}
	if !def.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestParseDefinitionsVariadicAndDefaultParams(t *testing.T) {
	def := parseOne(t, linesOf("!macro sum(a, b=0, *rest): total(a, b, rest)"))
	if len(def.Params) != 3 {
		t.Fatalf("Params = %+v", def.Params)
	}
	if def.Params[0].Name != "a" || def.Params[0].HasDefault {
		t.Errorf("Params[0] = %+v", def.Params[0])
	}
	if def.Params[1].Name != "b" || !def.Params[1].HasDefault || def.Params[1].Default != "0" {
		t.Errorf("Params[1] = %+v", def.Params[1])
	}
	if def.Params[2].Name != "rest" || !def.Params[2].Variadic {
		t.Errorf("Params[2] = %+v", def.Params[2])
	}
}

func TestParseDefinitionsTupleReceiver(t *testing.T) {
	lines := Lines{
		{Content: "!method (a, b).swap():\n", File: "t", Lineno: 1},
		{Content: "    tmp = a\n", File: "t", Lineno: 2},
	}
	def := parseOne(t, lines)
	if def.Placeholder == nil || def.Placeholder.Kind != PlaceholderTuple {
		t.Fatalf("Placeholder = %+v", def.Placeholder)
	}
	if len(def.Placeholder.Names) != 2 || def.Placeholder.Names[0] != "a" || def.Placeholder.Names[1] != "b" {
		t.Errorf("Placeholder.Names = %v", def.Placeholder.Names)
	}
}

func TestParseDefinitionsIndentedBlockBody(t *testing.T) {
	lines := Lines{
		{Content: "!macro pair(a, b):\n", File: "t", Lineno: 1},
		{Content: "    x = a\n", File: "t", Lineno: 2},
		{Content: "    y = b\n", File: "t", Lineno: 3},
		{Content: "not_part_of_body = 1\n", File: "t", Lineno: 4},
	}
	table, main, err := ParseDefinitions(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, _ := table.Resolve("pair", false)
	if def == nil {
		t.Fatal("expected a definition named pair")
	}
	if len(def.Body) != 2 {
		t.Fatalf("Body = %+v", def.Body)
	}
	if contentOf(main) != "not_part_of_body = 1\n" {
		t.Errorf("main = %q", contentOf(main))
	}
}

func TestDefinitionTableResolveTombstoneOnNonExec(t *testing.T) {
	table := NewDefinitionTable()
	normal, _, err := ParseDefinitions(linesOf("!method obj.touch(): pass"))
	if err != nil {
		t.Fatal(err)
	}
	table.Merge(normal)
	debugOnly, _, err := ParseDefinitions(linesOf("$debug !method obj.peek(): pass"))
	if err != nil {
		t.Fatal(err)
	}
	table.Merge(debugOnly)

	def, tombstoned := table.Resolve("peek", false)
	if !tombstoned {
		t.Fatal("expected peek to resolve as tombstoned in non-exec mode")
	}
	if def.Kind != KindMethod {
		t.Errorf("tombstone Kind = %v, want KindMethod (no coercion)", def.Kind)
	}
	if def.Placeholder != nil {
		t.Errorf("tombstone must drop placeholder info, got %+v", def.Placeholder)
	}

	def, tombstoned = table.Resolve("peek", true)
	if tombstoned {
		t.Error("in exec mode peek should resolve to its real debug definition, not a tombstone")
	}
	if def.Kind != KindMethod {
		t.Errorf("Kind = %v, want KindMethod", def.Kind)
	}
}

func TestDefinitionTableResolveUnknownName(t *testing.T) {
	table := NewDefinitionTable()
	def, tombstoned := table.Resolve("nope", false)
	if def != nil || tombstoned {
		t.Errorf("Resolve(unknown) = %+v, %v; want nil, false", def, tombstoned)
	}
}

func TestParseDefinitionsPreservesDeclarationOrder(t *testing.T) {
	lines := Lines{
		{Content: "!macro second(): pass\n", File: "t", Lineno: 1},
		{Content: "!macro first(): pass\n", File: "t", Lineno: 2},
	}
	table, _, err := ParseDefinitions(lines)
	if err != nil {
		t.Fatal(err)
	}
	names := table.Names()
	if len(names) != 2 || names[0] != "second" || names[1] != "first" {
		t.Errorf("Names() = %v, want [second first]", names)
	}
}
