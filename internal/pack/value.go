package pack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"rld/internal/space"
	"rld/internal/tensor"
)

// FromValue builds an ArrayObs for s from loosely typed data such as the
// output of json.Unmarshal or yaml.Unmarshal: nested numeric slices for a
// Box, map[string]any or Ordered for a Dict.
func FromValue(v any, s space.Space) (ArrayObs, error) {
	switch sp := s.(type) {
	case space.Box:
		a, err := tensor.AsArray(v)
		if errors.Is(err, ErrShape) {
			return nil, fmt.Errorf("%s: %w", sp, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStructure, err)
		}
		if a.Len() != sp.Size() {
			return nil, fmt.Errorf("%w: %s expects %d elements, got %d", ErrShape, sp, sp.Size(), a.Len())
		}
		a, err = a.Reshape(sp.Shape()...)
		if err != nil {
			return nil, err
		}
		return Leaf[tensor.Array]{Value: a}, nil
	case space.Dict:
		in, err := asMap(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sp, err)
		}
		for _, k := range sortedKeys(in) {
			if _, ok := sp.Lookup(k); !ok {
				return nil, fmt.Errorf("%w %q", ErrUnexpectedKey, k)
			}
		}
		m := &Map[tensor.Array]{}
		for _, e := range sp.Entries() {
			raw, ok := in[e.Name]
			if !ok {
				return nil, fmt.Errorf("%w %q", ErrMissingKey, e.Name)
			}
			child, err := FromValue(raw, e.Space)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Name, err)
			}
			m.fields = append(m.fields, Field[tensor.Array]{Name: e.Name, Value: child})
		}
		return m, nil
	default:
		return nil, space.Unsupported(s)
	}
}

func asMap(v any) (map[string]any, error) {
	switch x := v.(type) {
	case map[string]any:
		return x, nil
	case Ordered:
		out := make(map[string]any, len(x))
		for _, kv := range x {
			out[kv.Key] = kv.Value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a mapping, got %T", ErrStructure, v)
	}
}

// ToValue renders an array observation as plain data: nested []any for
// leaves (a bare float32 for scalars) and Ordered for mappings, so that
// JSON and YAML output keep the declared key order.
func ToValue(o ArrayObs) any {
	return render(o, func(a tensor.Array) ([]int, []float32) { return a.Shape, a.Data })
}

// TensorValue is ToValue for tensor observations.
func TensorValue(o TensorObs) any {
	return render(o, func(t *tensor.Tensor) ([]int, []float32) { return t.Shape(), t.Data() })
}

func render[L any](o Obs[L], leaf func(L) ([]int, []float32)) any {
	switch v := o.(type) {
	case Leaf[L]:
		shape, data := leaf(v.Value)
		out, _ := nest(shape, data)
		return out
	case *Map[L]:
		out := make(Ordered, 0, v.Len())
		for _, f := range v.fields {
			out = append(out, KV{Key: f.Name, Value: render(f.Value, leaf)})
		}
		return out
	default:
		return nil
	}
}

func nest(shape []int, data []float32) (any, []float32) {
	if len(shape) == 0 {
		if len(data) == 0 {
			return nil, data
		}
		return data[0], data[1:]
	}
	out := make([]any, shape[0])
	for i := range out {
		out[i], data = nest(shape[1:], data)
	}
	return out, data
}

// KV is one entry of an Ordered mapping.
type KV struct {
	Key   string
	Value any
}

// Ordered is a mapping that marshals its keys in slice order.
type Ordered []KV

// Get returns the value for key.
func (o Ordered) Get(key string) (any, bool) {
	for _, kv := range o {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes a JSON object with keys in order.
func (o Ordered) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Nested objects are
// decoded as Ordered too.
func (o *Ordered) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return err
	}
	m, ok := v.(Ordered)
	if !ok {
		return fmt.Errorf("expected JSON object")
	}
	*o = m
	return nil
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := Ordered{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", kt)
				}
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, KV{Key: key, Value: val})
			}
			_, err := dec.Token()
			return out, err
		case '[':
			out := []any{}
			for dec.More() {
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, val)
			}
			_, err := dec.Token()
			return out, err
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return t.Float64()
	default:
		return t, nil
	}
}

// MarshalYAML emits a YAML mapping node with keys in order.
func (o Ordered) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range o {
		k := &yaml.Node{}
		k.SetString(kv.Key)
		v := &yaml.Node{}
		if err := v.Encode(kv.Value); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, k, v)
	}
	return n, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
