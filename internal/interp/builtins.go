package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/maruel/natural"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Builtins is the set of names resolved when an identifier is absent from
// every environment frame: head/tail/length/keys from spec.md §4.3, plus
// sort/upper/lower/normalize/encode/decode, which round out the evaluator
// with real third-party algorithms instead of ad-hoc string/slice code.
var Builtins = map[string]Value{
	"head":      Builtin{Name: "head", Fn: builtinHead},
	"tail":      Builtin{Name: "tail", Fn: builtinTail},
	"length":    Builtin{Name: "length", Fn: builtinLength},
	"keys":      Builtin{Name: "keys", Fn: builtinKeys},
	"sort":      Builtin{Name: "sort", Fn: builtinSort},
	"upper":     Builtin{Name: "upper", Fn: builtinUpper},
	"lower":     Builtin{Name: "lower", Fn: builtinLower},
	"normalize": Builtin{Name: "normalize", Fn: builtinNormalize},
	"encode":    Builtin{Name: "encode", Fn: builtinEncode},
	"decode":    Builtin{Name: "decode", Fn: builtinDecode},
}

func arityError(name string, want int, got int) error {
	return fmt.Errorf("%s expects %d argument(s), got %d", name, want, got)
}

func typeError(name string, arg Value) error {
	return fmt.Errorf("illegal type for %s: %s", name, arg.Type())
}

func builtinHead(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("head", 1, len(args))
	}
	arr, ok := args[0].(Array)
	if !ok {
		return nil, typeError("head", args[0])
	}
	if len(*arr.Items) == 0 {
		return Null{}, nil
	}
	return (*arr.Items)[0], nil
}

func builtinTail(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("tail", 1, len(args))
	}
	arr, ok := args[0].(Array)
	if !ok {
		return nil, typeError("tail", args[0])
	}
	if len(*arr.Items) <= 1 {
		return NewArray(nil), nil
	}
	rest := make([]Value, len(*arr.Items)-1)
	copy(rest, (*arr.Items)[1:])
	return NewArray(rest), nil
}

func builtinLength(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("length", 1, len(args))
	}
	switch v := args[0].(type) {
	case Array:
		return IntValue(int64(len(*v.Items))), nil
	case Object:
		return IntValue(int64(len(v.Keys()))), nil
	case String:
		return IntValue(int64(utf8.RuneCountInString(v.Value))), nil
	default:
		return nil, typeError("length", args[0])
	}
}

func builtinKeys(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("keys", 1, len(args))
	}
	obj, ok := args[0].(Object)
	if !ok {
		return nil, typeError("keys", args[0])
	}
	ks := obj.Keys()
	items := make([]Value, len(ks))
	for i, k := range ks {
		items[i] = String{Value: k}
	}
	return NewArray(items), nil
}

// builtinSort returns a new array in natural order: string elements compare
// with digit runs treated numerically (so "item2" sorts before "item10"),
// via maruel/natural; number elements compare numerically; mixed or
// unsupported element types fail.
func builtinSort(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("sort", 1, len(args))
	}
	arr, ok := args[0].(Array)
	if !ok {
		return nil, typeError("sort", args[0])
	}
	items := make([]Value, len(*arr.Items))
	copy(items, *arr.Items)

	allStrings := true
	allNumbers := true
	for _, v := range items {
		if _, ok := v.(String); !ok {
			allStrings = false
		}
		if _, ok := v.(Number); !ok {
			allNumbers = false
		}
	}

	switch {
	case allStrings:
		sort.Slice(items, func(i, j int) bool {
			return natural.Less(items[i].(String).Value, items[j].(String).Value)
		})
	case allNumbers:
		sort.Slice(items, func(i, j int) bool {
			return items[i].(Number).AsFloat() < items[j].(Number).AsFloat()
		})
	default:
		return nil, fmt.Errorf("sort requires an array of all strings or all numbers")
	}
	return NewArray(items), nil
}

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func builtinUpper(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("upper", 1, len(args))
	}
	s, ok := args[0].(String)
	if !ok {
		return nil, typeError("upper", args[0])
	}
	return String{Value: upperCaser.String(s.Value)}, nil
}

func builtinLower(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("lower", 1, len(args))
	}
	s, ok := args[0].(String)
	if !ok {
		return nil, typeError("lower", args[0])
	}
	return String{Value: lowerCaser.String(s.Value)}, nil
}

func builtinNormalize(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("normalize", 1, len(args))
	}
	s, ok := args[0].(String)
	if !ok {
		return nil, typeError("normalize", args[0])
	}
	return String{Value: norm.NFC.String(s.Value)}, nil
}

// builtinEncode serializes a Value to a JSON string by building the
// document incrementally with sjson, keyed by root-relative paths.
func builtinEncode(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("encode", 1, len(args))
	}
	doc, err := encodeRoot(args[0])
	if err != nil {
		return nil, err
	}
	return String{Value: doc}, nil
}

func encodeRoot(v Value) (string, error) {
	switch val := v.(type) {
	case Array:
		doc := "[]"
		var err error
		for i, item := range *val.Items {
			doc, err = sjsonSet(doc, strconv.Itoa(i), item)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case Object:
		doc := "{}"
		var err error
		for _, k := range val.Keys() {
			item, _ := val.Get(k)
			doc, err = sjsonSet(doc, sjsonEscapeKey(k), item)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	default:
		// sjson always operates relative to an object/array path, so a bare
		// scalar root (no container to address) is formatted directly; this
		// is the one corner sjson/gjson don't cover.
		return scalarJSON(val)
	}
}

func scalarJSON(v Value) (string, error) {
	switch val := v.(type) {
	case Number:
		if val.IsInt {
			return strconv.FormatInt(val.Int, 10), nil
		}
		return strconv.FormatFloat(val.Float, 'g', -1, 64), nil
	case String:
		return strconv.Quote(val.Value), nil
	case Bool:
		return strconv.FormatBool(val.Value), nil
	case Null:
		return "null", nil
	default:
		return "", fmt.Errorf("encode: cannot serialize a %s", v.Type())
	}
}

// sjsonEscapeKey escapes path metacharacters ('.', '*', '?') sjson would
// otherwise interpret as path syntax rather than a literal key.
func sjsonEscapeKey(k string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(k)
}

func sjsonSet(doc, path string, v Value) (string, error) {
	switch val := v.(type) {
	case Array:
		sub, err := encodeRoot(val)
		if err != nil {
			return "", err
		}
		return sjson.SetRaw(doc, path, sub)
	case Object:
		sub, err := encodeRoot(val)
		if err != nil {
			return "", err
		}
		return sjson.SetRaw(doc, path, sub)
	default:
		return sjson.Set(doc, path, toJSONScalar(val))
	}
}

func toJSONScalar(v Value) any {
	switch val := v.(type) {
	case Number:
		if val.IsInt {
			return val.Int
		}
		return val.Float
	case String:
		return val.Value
	case Bool:
		return val.Value
	case Null:
		return nil
	default:
		return val.String()
	}
}

// builtinDecode parses a JSON string into the equivalent Value tree using
// gjson. Object key order is not guaranteed to survive: JSON objects carry
// no ordering guarantee, so this is a known, accepted lossiness.
func builtinDecode(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, arityError("decode", 1, len(args))
	}
	s, ok := args[0].(String)
	if !ok {
		return nil, typeError("decode", args[0])
	}
	if !gjson.Valid(s.Value) {
		return nil, fmt.Errorf("decode: invalid JSON")
	}
	return decodeResult(gjson.Parse(s.Value)), nil
}

func decodeResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null{}
	case gjson.False:
		return Bool{Value: false}
	case gjson.True:
		return Bool{Value: true}
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) && !strings.ContainsAny(r.Raw, ".eE") {
			return IntValue(int64(r.Num))
		}
		return FloatValue(r.Num)
	case gjson.String:
		return String{Value: r.Str}
	case gjson.JSON:
		if r.IsArray() {
			var items []Value
			r.ForEach(func(_, value gjson.Result) bool {
				items = append(items, decodeResult(value))
				return true
			})
			return NewArray(items)
		}
		obj := NewObject()
		r.ForEach(func(key, value gjson.Result) bool {
			obj.Set(key.Str, decodeResult(value))
			return true
		})
		return obj
	default:
		return Null{}
	}
}
