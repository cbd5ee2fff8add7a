package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Bicep renders the rule as a resource declaration. This is a structural
// pretty-printer over the JSON-shaped rule, not a Bicep compiler: it only has
// to faithfully render what the generator emits.
func Bicep(r *Rule) (string, error) {
	props, err := toAny(r.Properties)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "resource dcr '%s@%s' = {\n", ResourceType, APIVersion)
	fmt.Fprintf(&b, "  name: %s\n", bicepString(r.Name))
	fmt.Fprintf(&b, "  location: %s\n", bicepString(r.Location))
	fmt.Fprintf(&b, "  kind: %s\n", bicepString(r.Kind))
	b.WriteString("  properties: ")
	writeBicepValue(&b, props, 1)
	b.WriteString("\n}\n")
	return b.String(), nil
}

// toAny round-trips v through JSON so the renderer works on one generic
// shape. UseNumber keeps numeric literals verbatim.
func toAny(v any) (any, error) {
	bs, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(bs))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeBicepValue(b *strings.Builder, v any, depth int) {
	pad := strings.Repeat("  ", depth)
	inner := strings.Repeat("  ", depth+1)

	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		fmt.Fprintf(b, "%t", t)
	case json.Number:
		b.WriteString(t.String())
	case string:
		b.WriteString(bicepString(t))
	case []any:
		if len(t) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for _, e := range t {
			b.WriteString(inner)
			writeBicepValue(b, e, depth+1)
			b.WriteString("\n")
		}
		b.WriteString(pad + "]")
	case map[string]any:
		if len(t) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for _, k := range sortedKeys(t) {
			b.WriteString(inner + bicepKey(k) + ": ")
			writeBicepValue(b, t[k], depth+1)
			b.WriteString("\n")
		}
		b.WriteString(pad + "}")
	default:
		// Unreachable for JSON round-tripped input.
		b.WriteString(bicepString(fmt.Sprint(t)))
	}
}

// bicepString single-quotes s, escaping internal quotes by doubling.
func bicepString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// bicepKey leaves valid identifiers bare and quotes everything else, which
// covers stream names like 'Custom-AppLogs_CL'.
func bicepKey(k string) string {
	if isBicepIdent(k) {
		return k
	}
	return bicepString(k)
}

func isBicepIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
