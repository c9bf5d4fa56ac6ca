package scpi

import (
	"strconv"
	"strings"
)

// Kind 解码值的类型标签
type Kind int

const (
	KindInvalid Kind = iota
	KindFloat
	KindInt
	KindBool
	KindNull
	KindText
	KindTuple
)

// String 返回类型名
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// Value 一次解码的结果：{浮点, 整数, 布尔, 空值, 文本, 元组}的带标签联合。
// 元组只有一层——逗号只按顶层切分，元组成员不会再是元组。
type Value struct {
	kind  Kind
	f     float64
	i     int64
	b     bool
	s     string
	tuple []Value
}

// FloatValue 构造浮点值
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// IntValue 构造整数值
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// BoolValue 构造布尔值
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NullValue 构造空值（对应仪表的N或----标记）
func NullValue() Value { return Value{kind: KindNull} }

// TextValue 构造文本值
func TextValue(s string) Value { return Value{kind: KindText, s: s} }

// TupleValue 构造元组值
func TupleValue(vs []Value) Value { return Value{kind: KindTuple, tuple: vs} }

// Kind 返回类型标签
func (v Value) Kind() Kind { return v.kind }

// IsNull 是否为空值标记。空值与读超时是两种情况：
// 空值是仪表明确返回的，超时是根本没有响应。
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsFloat 取浮点值
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsInt 取整数值
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsBool 取布尔值
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsText 取文本值
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.s, true
}

// AsTuple 取元组成员
func (v Value) AsTuple() ([]Value, bool) {
	if v.kind != KindTuple {
		return nil, false
	}
	return v.tuple, true
}

// Float 取浮点数，整数也按浮点返回。非数值返回false。
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// String 按仪表的文本约定渲染
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		if v.b {
			return "ON"
		}
		return "OFF"
	case KindNull:
		return "----"
	case KindText:
		return v.s
	case KindTuple:
		parts := make([]string, len(v.tuple))
		for i, e := range v.tuple {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}
