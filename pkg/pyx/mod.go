package pyx

import (
	"regexp"
	"strings"
)

// modAssignPattern matches a "lhs %op= rhs" modular-assignment line: the
// leading indentation, the left-hand target, the operator (+-*/), and the
// right-hand operand.
var modAssignPattern = regexp.MustCompile(`^(\s*)(.+?)\s*%([+\-*/])=\s*(.+)$`)

// applyModRewrite rewrites a "$mod"-scoped line's "lhs %op= rhs" shorthand
// into an explicit modular-arithmetic statement (§4.7). Division uses
// Fermat's little theorem (pow(rhs, mod-2, mod)) for the modular inverse,
// which only holds when mod is prime — §DESIGN documents this as a known
// limitation, not a general composite-modulus inverse. Lines with no
// modAssignPattern match, or when modValue is empty (no active "$mod"),
// pass through unchanged.
func applyModRewrite(text, modValue string) string {
	if strings.TrimSpace(modValue) == "" {
		return text
	}
	code, comment := splitComment(text)
	m := modAssignPattern.FindStringSubmatch(strings.TrimRight(code, "\r\n"))
	if m == nil {
		return text
	}
	indent, lhs, op, rhs := m[1], strings.TrimSpace(m[2]), m[3], strings.TrimSpace(m[4])
	modExpr := "(" + modValue + ")"

	var newCode string
	if op == "/" {
		newCode = indent + lhs + "=(" + lhs + "*pow(" + rhs + "," + modExpr + "-2," + modExpr + "))%" + modExpr
	} else {
		newCode = indent + lhs + "=(" + lhs + op + "(" + rhs + "))%" + modExpr
	}

	combined := newCode
	if comment != "" {
		combined += " " + comment
	}
	return strings.TrimRight(combined, " \t\r\n") + "\n"
}
