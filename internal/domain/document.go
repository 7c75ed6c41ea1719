package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Member is one key/value pair of a map document.
type Member struct {
	Key   string
	Value Document
}

// Document is a semi-structured JSON value (amenities, policies, room
// features, conversation context). Map keys keep their input order and
// numbers keep their literal text. The zero value is null.
type Document struct {
	kind    Kind
	b       bool
	s       string // string value or number literal
	items   []Document
	members []Member
}

func Null() Document { return Document{} }

func Bool(v bool) Document { return Document{kind: KindBool, b: v} }

func String(v string) Document { return Document{kind: KindString, s: v} }

func Int(v int64) Document { return Document{kind: KindNumber, s: strconv.FormatInt(v, 10)} }

// Number builds a number document from a JSON number literal.
func Number(lit json.Number) (Document, error) {
	if _, err := lit.Float64(); err != nil {
		return Document{}, fmt.Errorf("document: invalid number %q", lit)
	}
	return Document{kind: KindNumber, s: lit.String()}, nil
}

func List(items ...Document) Document {
	return Document{kind: KindList, items: append([]Document{}, items...)}
}

// Map builds a map document. A repeated key replaces the earlier value in place.
func Map(members ...Member) Document {
	d := Document{kind: KindMap, members: make([]Member, 0, len(members))}
	for _, m := range members {
		d.members = setMember(d.members, m.Key, m.Value)
	}
	return d
}

func setMember(ms []Member, key string, v Document) []Member {
	for i := range ms {
		if ms[i].Key == key {
			ms[i].Value = v
			return ms
		}
	}
	return append(ms, Member{Key: key, Value: v})
}

func (d Document) Kind() Kind { return d.kind }

func (d Document) IsNull() bool { return d.kind == KindNull }

func (d Document) AsBool() (bool, bool) { return d.b, d.kind == KindBool }

func (d Document) AsString() (string, bool) { return d.s, d.kind == KindString }

func (d Document) AsNumber() (json.Number, bool) { return json.Number(d.s), d.kind == KindNumber }

func (d Document) AsInt() (int64, bool) {
	if d.kind != KindNumber {
		return 0, false
	}
	n, err := strconv.ParseInt(d.s, 10, 64)
	return n, err == nil
}

// Len is the number of list items or map members; zero for scalars.
func (d Document) Len() int {
	switch d.kind {
	case KindList:
		return len(d.items)
	case KindMap:
		return len(d.members)
	}
	return 0
}

func (d Document) Index(i int) (Document, bool) {
	if d.kind != KindList || i < 0 || i >= len(d.items) {
		return Document{}, false
	}
	return d.items[i], true
}

func (d Document) Items() []Document {
	if d.kind != KindList {
		return nil
	}
	return append([]Document{}, d.items...)
}

func (d Document) Get(key string) (Document, bool) {
	if d.kind != KindMap {
		return Document{}, false
	}
	for _, m := range d.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Document{}, false
}

func (d Document) Members() []Member {
	if d.kind != KindMap {
		return nil
	}
	return append([]Member{}, d.members...)
}

func (d Document) Keys() []string {
	if d.kind != KindMap {
		return nil
	}
	out := make([]string, len(d.members))
	for i, m := range d.members {
		out[i] = m.Key
	}
	return out
}

// Equal compares structurally; map member order matters.
func (d Document) Equal(o Document) bool {
	if d.kind != o.kind {
		return false
	}
	switch d.kind {
	case KindNull:
		return true
	case KindBool:
		return d.b == o.b
	case KindNumber, KindString:
		return d.s == o.s
	case KindList:
		if len(d.items) != len(o.items) {
			return false
		}
		for i := range d.items {
			if !d.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(d.members) != len(o.members) {
			return false
		}
		for i := range d.members {
			if d.members[i].Key != o.members[i].Key || !d.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d Document) encode(buf *bytes.Buffer) error {
	switch d.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(d.b))
	case KindNumber:
		buf.WriteString(d.s)
	case KindString:
		b, err := json.Marshal(d.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, it := range d.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, m := range d.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("document: unknown kind %d", d.kind)
	}
	return nil
}

func (d *Document) UnmarshalJSON(b []byte) error {
	v, err := ParseDocument(b)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDocument decodes exactly one JSON value.
func ParseDocument(b []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	d, err := decodeDocument(dec)
	if err != nil {
		return Document{}, fmt.Errorf("document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Document{}, errors.New("document: trailing data after JSON value")
	}
	return d, nil
}

func MustParseDocument(s string) Document {
	d, err := ParseDocument([]byte(s))
	if err != nil {
		panic(err)
	}
	return d
}

func decodeDocument(dec *json.Decoder) (Document, error) {
	tok, err := dec.Token()
	if err != nil {
		return Document{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Document{kind: KindNumber, s: t.String()}, nil
	case json.Delim:
		switch t {
		case '[':
			out := Document{kind: KindList, items: []Document{}}
			for dec.More() {
				it, err := decodeDocument(dec)
				if err != nil {
					return Document{}, err
				}
				out.items = append(out.items, it)
			}
			_, err := dec.Token() // ']'
			return out, err
		case '{':
			out := Document{kind: KindMap, members: []Member{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Document{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Document{}, fmt.Errorf("unexpected object key %v", kt)
				}
				v, err := decodeDocument(dec)
				if err != nil {
					return Document{}, err
				}
				out.members = setMember(out.members, key, v)
			}
			_, err := dec.Token() // '}'
			return out, err
		}
	}
	return Document{}, fmt.Errorf("unexpected token %v", tok)
}

// Scan reads a JSON column. SQL NULL becomes a null document.
func (d *Document) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Null()
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("document: cannot scan %T", src)
	}
}

// Value writes a null document as SQL NULL.
func (d Document) Value() (driver.Value, error) {
	if d.IsNull() {
		return nil, nil
	}
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
