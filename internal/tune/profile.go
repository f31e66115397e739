package tune

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Setting is one option assignment from a profile, in the registry's
// integer encoding (floats are stored ×100).
type Setting struct {
	Name  string
	Value int
}

// LoadProfile reads a YAML profile. Nested mappings are allowed for grouping;
// only the leaf key is used as the option name. Settings are sorted by name so
// application order is deterministic.
func LoadProfile(path string) ([]Setting, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(b)
}

// ParseProfile decodes profile bytes.
func ParseProfile(b []byte) ([]Setting, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	flat := make(map[string]int)
	if err := flattenInts(m, flat); err != nil {
		return nil, err
	}
	out := make([]Setting, 0, len(flat))
	for k, v := range flat {
		out = append(out, Setting{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func flattenInts(src any, out map[string]int) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			if nested, ok := vv.(map[string]any); ok {
				if err := flattenInts(nested, out); err != nil {
					return err
				}
				continue
			}
			n, err := toInt(vv)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			if _, dup := out[k]; dup {
				return fmt.Errorf("duplicate profile key %q", k)
			}
			out[k] = n
		}
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported profile root %T", src)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("value %v is not an integer", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

// WriteProfile writes settings as a flat YAML mapping with a header comment.
func WriteProfile(path, header string, settings []Setting) error {
	b, err := MarshalProfile(header, settings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// MarshalProfile renders settings in the order given.
func MarshalProfile(header string, settings []Setting) ([]byte, error) {
	body := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range settings {
		body.Content = append(body.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(s.Value)},
		)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{body}}
	if h := strings.TrimSpace(header); h != "" {
		doc.HeadComment = "# " + h
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return buf.Bytes(), nil
}
