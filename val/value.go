// Package val implements SurrealQL's polymorphic runtime value: the Value
// type consumed and produced throughout the executor, the posting store and
// the scorers. Grounded on original_source's crates/core/src/sql/value and
// crates/core/src/expr/decimal.rs, adapted to an idiomatic Go tagged struct
// per the "compact sum type" design note (no dynamic dispatch for a known,
// small branch factor).
package val

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tags which field of Value is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindDuration
	KindDatetime
	KindUuid
	KindBytes
	KindArray
	KindObject
	KindRecord
	KindGeometry
)

// Value is the executor's polymorphic runtime value. Exactly one payload
// field is meaningful for a given Kind; the rest are zero.
type Value struct {
	Kind     Kind
	Bool     bool
	Number   Number
	Str      string
	Duration time.Duration
	Datetime time.Time
	Uuid     uuid.UUID
	Bytes    []byte
	Array    Array
	Object   Object
	Record   Record
	Geometry Geometry
}

// Array is an ordered Value list.
type Array []Value

// Object is an ordered-iteration string->Value map (insertion order is
// preserved in Keys so that JSON-ish serialization and highlight/offsets
// output stays deterministic).
type Object struct {
	Keys   []string
	Values map[string]Value
}

func NewObject() Object {
	return Object{Values: map[string]Value{}}
}

func (o *Object) Set(key string, v Value) {
	if o.Values == nil {
		o.Values = map[string]Value{}
	}
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = v
}

func (o Object) Get(key string) (Value, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// Remove deletes key and returns its former value, mirroring the
// Object::remove used by search::rrf/search::linear to pull the "id" field
// out of each candidate document before merging.
func (o *Object) Remove(key string) (Value, bool) {
	v, ok := o.Values[key]
	if !ok {
		return Value{}, false
	}
	delete(o.Values, key)
	for i, k := range o.Keys {
		if k == key {
			o.Keys = append(o.Keys[:i], o.Keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Append merges other's fields into o, later values winning on key
// collision — used to merge original per-list objects during fusion.
func (o *Object) Append(other Object) {
	for _, k := range other.Keys {
		o.Set(k, other.Values[k])
	}
}

// Record is a `table:id` pointer. ID holds the record id in string form
// only (string, number or object ids are all legal in SurrealQL; all are
// represented by their string form here).
type Record struct {
	Table string
	ID    string
}

func (r Record) String() string { return r.Table + ":" + r.ID }

func None() Value { return Value{Kind: KindNone} }
func Null() Value { return Value{Kind: KindNull} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Str(s string) Value { return Value{Kind: KindString, Str: s} }
func Num(n Number) Value { return Value{Kind: KindNumber, Number: n} }
func IntV(i int64) Value { return Value{Kind: KindNumber, Number: Int(i)} }
func FloatV(f float64) Value { return Value{Kind: KindNumber, Number: Float(f)} }
func ArrayV(a Array) Value { return Value{Kind: KindArray, Array: a} }
func ObjectV(o Object) Value { return Value{Kind: KindObject, Object: o} }
func RecordV(r Record) Value { return Value{Kind: KindRecord, Record: r} }
func BytesV(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }
func DurationV(d time.Duration) Value { return Value{Kind: KindDuration, Duration: d} }
func DatetimeV(t time.Time) Value { return Value{Kind: KindDatetime, Datetime: t} }
func UuidV(u uuid.UUID) Value { return Value{Kind: KindUuid, Uuid: u} }
func GeometryV(g Geometry) Value { return Value{Kind: KindGeometry, Geometry: g} }

func (v Value) IsNone() bool { return v.Kind == KindNone }
func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "NONE"
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindNumber:
		return v.Number.String()
	case KindString:
		return v.Str
	case KindDuration:
		return v.Duration.String()
	case KindDatetime:
		return v.Datetime.Format(time.RFC3339Nano)
	case KindUuid:
		return v.Uuid.String()
	case KindBytes:
		return fmt.Sprintf("%x", v.Bytes)
	case KindArray:
		return fmt.Sprintf("%v", v.Array)
	case KindObject:
		return fmt.Sprintf("%v", v.Object.Values)
	case KindRecord:
		return v.Record.String()
	case KindGeometry:
		return v.Geometry.String()
	default:
		return ""
	}
}
