package domain

import "fmt"

type ValueKind int

const (
	ValueUnknown ValueKind = iota
	ValueString
	ValueReference
	ValueFile
	ValueStyle
	ValueArray
	ValuePlural
	ValueStyleable
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueReference:
		return "reference"
	case ValueFile:
		return "file"
	case ValueStyle:
		return "style"
	case ValueArray:
		return "array"
	case ValuePlural:
		return "plural"
	case ValueStyleable:
		return "styleable"
	default:
		return "unknown"
	}
}

// Value is one configuration-specific value of a resource entry.
//
// Encoded holds the value's original wire form when it was decoded from a
// resource table. Encoders write it back verbatim so untouched values survive
// a reduce/inject pass unchanged.
type Value struct {
	Kind     ValueKind
	Str      string
	Ref      ResourceID
	Style    *Style
	Elements []Value
	// Arity is the plural quantity of a plural element (zero, one, two, few, many, other).
	Arity   uint8
	Encoded []byte
}

type Style struct {
	Parent ResourceID
	Items  []StyleItem
}

type StyleItem struct {
	Attr  ResourceID
	Value Value
}

func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func ReferenceValue(id ResourceID) Value {
	return Value{Kind: ValueReference, Ref: id}
}

// References lists every resource id this value points at, including style
// parents, style attribute keys and nested elements.
func (v Value) References() []ResourceID {
	var refs []ResourceID
	v.appendReferences(&refs)
	return refs
}

func (v Value) appendReferences(refs *[]ResourceID) {
	if v.Ref != 0 {
		*refs = append(*refs, v.Ref)
	}
	if v.Style != nil {
		if v.Style.Parent != 0 {
			*refs = append(*refs, v.Style.Parent)
		}
		for _, item := range v.Style.Items {
			if item.Attr != 0 {
				*refs = append(*refs, item.Attr)
			}
			item.Value.appendReferences(refs)
		}
	}
	for _, element := range v.Elements {
		element.appendReferences(refs)
	}
}

func (v Value) clone() Value {
	out := v
	if v.Style != nil {
		style := Style{Parent: v.Style.Parent}
		if v.Style.Items != nil {
			style.Items = make([]StyleItem, len(v.Style.Items))
			for i, item := range v.Style.Items {
				style.Items[i] = StyleItem{Attr: item.Attr, Value: item.Value.clone()}
			}
		}
		out.Style = &style
	}
	if v.Elements != nil {
		out.Elements = make([]Value, len(v.Elements))
		for i, element := range v.Elements {
			out.Elements[i] = element.clone()
		}
	}
	if v.Encoded != nil {
		out.Encoded = append([]byte(nil), v.Encoded...)
	}
	return out
}

// Configuration is the device qualifier set selecting one value of an entry.
// The zero value is the default configuration.
type Configuration struct {
	Mcc        uint32
	Mnc        uint32
	Locale     string
	Density    uint32
	SdkVersion uint32
	Product    string
	Encoded    []byte
}

func (c Configuration) IsDefault() bool {
	return c.Key() == ""
}

// Key identifies the configuration within an entry. A decoded configuration
// is keyed by its wire form since it may carry qualifiers not modelled here.
func (c Configuration) Key() string {
	if len(c.Encoded) > 0 {
		return fmt.Sprintf("raw:%x", c.Encoded)
	}

	key := ""
	if c.Mcc != 0 {
		key += fmt.Sprintf("-mcc%d", c.Mcc)
	}
	if c.Mnc != 0 {
		key += fmt.Sprintf("-mnc%d", c.Mnc)
	}
	if c.Locale != "" {
		key += "-" + c.Locale
	}
	if c.Density != 0 {
		key += fmt.Sprintf("-%ddpi", c.Density)
	}
	if c.SdkVersion != 0 {
		key += fmt.Sprintf("-v%d", c.SdkVersion)
	}
	if c.Product != "" {
		key += "-product:" + c.Product
	}
	return key
}

type ConfigValue struct {
	Config Configuration
	Value  Value
}
