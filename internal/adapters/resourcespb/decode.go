// Package resourcespb reads and writes resource tables in aapt2's protobuf
// format (resources.pb inside app bundles), using only the subset of
// Resources.proto the archive pipeline needs. Fields outside that subset are
// kept as raw bytes on the table, package, type and entry they belong to, and
// configuration values keep their original bytes, so a decoded table
// re-encodes without losing data.
package resourcespb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bnema/archivist/internal/domain"
)

// Field numbers from frameworks/base/tools/aapt2/Resources.proto.
const (
	fieldTablePackage protowire.Number = 2

	fieldPackageID   protowire.Number = 1
	fieldPackageName protowire.Number = 2
	fieldPackageType protowire.Number = 3

	fieldTypeID    protowire.Number = 1
	fieldTypeName  protowire.Number = 2
	fieldTypeEntry protowire.Number = 3

	fieldEntryID          protowire.Number = 1
	fieldEntryName        protowire.Number = 2
	fieldEntryConfigValue protowire.Number = 6

	fieldConfigValueConfig protowire.Number = 1
	fieldConfigValueValue  protowire.Number = 2

	fieldIDValue protowire.Number = 1

	fieldConfigMcc        protowire.Number = 1
	fieldConfigMnc        protowire.Number = 2
	fieldConfigLocale     protowire.Number = 3
	fieldConfigDensity    protowire.Number = 18
	fieldConfigSdkVersion protowire.Number = 24
	fieldConfigProduct    protowire.Number = 25

	fieldValueItem     protowire.Number = 4
	fieldValueCompound protowire.Number = 5

	fieldItemRef    protowire.Number = 1
	fieldItemStr    protowire.Number = 2
	fieldItemRawStr protowire.Number = 3
	fieldItemFile   protowire.Number = 5

	fieldReferenceID protowire.Number = 2
	fieldStringValue protowire.Number = 1
	fieldFilePath    protowire.Number = 1

	fieldCompoundStyle     protowire.Number = 2
	fieldCompoundStyleable protowire.Number = 3
	fieldCompoundArray     protowire.Number = 4
	fieldCompoundPlural    protowire.Number = 5

	fieldStyleParent protowire.Number = 1
	fieldStyleEntry  protowire.Number = 3
	fieldStyleKey    protowire.Number = 3
	fieldStyleItem   protowire.Number = 4

	fieldStyleableEntry protowire.Number = 1
	fieldStyleableAttr  protowire.Number = 3

	fieldArrayElement protowire.Number = 1
	fieldArrayItem    protowire.Number = 3

	fieldPluralEntry protowire.Number = 1
	fieldPluralArity protowire.Number = 3
	fieldPluralItem  protowire.Number = 4
)

type field struct {
	num    protowire.Number
	typ    protowire.Type
	bytes  []byte
	varint uint64
	// raw is the whole field, tag included.
	raw []byte
}

func forEachField(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		start := b
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.varint = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.bytes = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
		f.raw = start[:len(start)-len(b)]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func Decode(data []byte) (domain.ResourceTable, error) {
	var table domain.ResourceTable
	err := forEachField(data, func(f field) error {
		if f.num != fieldTablePackage || f.typ != protowire.BytesType {
			table.Unknown = append(table.Unknown, f.raw...)
			return nil
		}
		pkg, err := decodePackage(f.bytes)
		if err != nil {
			return err
		}
		table.Packages = append(table.Packages, pkg)
		return nil
	})
	if err != nil {
		return domain.ResourceTable{}, fmt.Errorf("decode resource table: %w", err)
	}
	return table, nil
}

func decodeID(b []byte) (uint32, error) {
	var id uint32
	err := forEachField(b, func(f field) error {
		if f.num == fieldIDValue && f.typ == protowire.VarintType {
			id = uint32(f.varint)
		}
		return nil
	})
	return id, err
}

func decodePackage(b []byte) (domain.ResourcePackage, error) {
	var pkg domain.ResourcePackage
	err := forEachField(b, func(f field) error {
		switch {
		case f.num == fieldPackageID && f.typ == protowire.BytesType:
			id, err := decodeID(f.bytes)
			if err != nil {
				return err
			}
			if id > 0xff {
				return fmt.Errorf("package id %d out of range", id)
			}
			pkg.ID = uint8(id)
		case f.num == fieldPackageName && f.typ == protowire.BytesType:
			pkg.Name = string(f.bytes)
		case f.num == fieldPackageType && f.typ == protowire.BytesType:
			typ, err := decodeType(f.bytes)
			if err != nil {
				return err
			}
			pkg.Types = append(pkg.Types, typ)
		default:
			pkg.Unknown = append(pkg.Unknown, f.raw...)
		}
		return nil
	})
	if err != nil {
		return domain.ResourcePackage{}, fmt.Errorf("package %q: %w", pkg.Name, err)
	}
	return pkg, nil
}

func decodeType(b []byte) (domain.ResourceType, error) {
	var typ domain.ResourceType
	err := forEachField(b, func(f field) error {
		switch {
		case f.num == fieldTypeID && f.typ == protowire.BytesType:
			id, err := decodeID(f.bytes)
			if err != nil {
				return err
			}
			if id > 0xff {
				return fmt.Errorf("type id %d out of range", id)
			}
			typ.ID = uint8(id)
		case f.num == fieldTypeName && f.typ == protowire.BytesType:
			typ.Name = string(f.bytes)
		case f.num == fieldTypeEntry && f.typ == protowire.BytesType:
			entry, err := decodeEntry(f.bytes)
			if err != nil {
				return err
			}
			typ.Entries = append(typ.Entries, entry)
		default:
			typ.Unknown = append(typ.Unknown, f.raw...)
		}
		return nil
	})
	if err != nil {
		return domain.ResourceType{}, fmt.Errorf("type %q: %w", typ.Name, err)
	}
	return typ, nil
}

func decodeEntry(b []byte) (domain.ResourceEntry, error) {
	var entry domain.ResourceEntry
	err := forEachField(b, func(f field) error {
		switch {
		case f.num == fieldEntryID && f.typ == protowire.BytesType:
			id, err := decodeID(f.bytes)
			if err != nil {
				return err
			}
			if id > 0xffff {
				return fmt.Errorf("entry id %d out of range", id)
			}
			entry.ID = uint16(id)
		case f.num == fieldEntryName && f.typ == protowire.BytesType:
			entry.Name = string(f.bytes)
		case f.num == fieldEntryConfigValue && f.typ == protowire.BytesType:
			value, err := decodeConfigValue(f.bytes)
			if err != nil {
				return err
			}
			entry.Values = append(entry.Values, value)
		default:
			entry.Unknown = append(entry.Unknown, f.raw...)
		}
		return nil
	})
	if err != nil {
		return domain.ResourceEntry{}, fmt.Errorf("entry %q: %w", entry.Name, err)
	}
	return entry, nil
}

func decodeConfigValue(b []byte) (domain.ConfigValue, error) {
	var cv domain.ConfigValue
	err := forEachField(b, func(f field) error {
		switch {
		case f.num == fieldConfigValueConfig && f.typ == protowire.BytesType:
			config, err := decodeConfiguration(f.bytes)
			if err != nil {
				return err
			}
			cv.Config = config
		case f.num == fieldConfigValueValue && f.typ == protowire.BytesType:
			value, err := decodeValue(f.bytes)
			if err != nil {
				return err
			}
			value.Encoded = append([]byte{}, f.bytes...)
			cv.Value = value
		}
		return nil
	})
	return cv, err
}

func decodeConfiguration(b []byte) (domain.Configuration, error) {
	config := domain.Configuration{Encoded: append([]byte{}, b...)}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case fieldConfigMcc:
			config.Mcc = uint32(f.varint)
		case fieldConfigMnc:
			config.Mnc = uint32(f.varint)
		case fieldConfigLocale:
			config.Locale = string(f.bytes)
		case fieldConfigDensity:
			config.Density = uint32(f.varint)
		case fieldConfigSdkVersion:
			config.SdkVersion = uint32(f.varint)
		case fieldConfigProduct:
			config.Product = string(f.bytes)
		}
		return nil
	})
	return config, err
}

func decodeValue(b []byte) (domain.Value, error) {
	var value domain.Value
	err := forEachField(b, func(f field) error {
		if f.typ != protowire.BytesType {
			return nil
		}
		var err error
		switch f.num {
		case fieldValueItem:
			value, err = decodeItem(f.bytes)
		case fieldValueCompound:
			value, err = decodeCompound(f.bytes)
		}
		return err
	})
	return value, err
}

func decodeItem(b []byte) (domain.Value, error) {
	var value domain.Value
	err := forEachField(b, func(f field) error {
		if f.typ != protowire.BytesType {
			return nil
		}
		switch f.num {
		case fieldItemRef:
			id, err := decodeReference(f.bytes)
			if err != nil {
				return err
			}
			value = domain.ReferenceValue(id)
		case fieldItemStr, fieldItemRawStr:
			s, err := decodeStringField(f.bytes, fieldStringValue)
			if err != nil {
				return err
			}
			value = domain.StringValue(s)
		case fieldItemFile:
			path, err := decodeStringField(f.bytes, fieldFilePath)
			if err != nil {
				return err
			}
			value = domain.Value{Kind: domain.ValueFile, Str: path}
		}
		return nil
	})
	return value, err
}

func decodeReference(b []byte) (domain.ResourceID, error) {
	var id domain.ResourceID
	err := forEachField(b, func(f field) error {
		if f.num == fieldReferenceID && f.typ == protowire.VarintType {
			id = domain.ResourceID(f.varint)
		}
		return nil
	})
	return id, err
}

func decodeStringField(b []byte, num protowire.Number) (string, error) {
	var s string
	err := forEachField(b, func(f field) error {
		if f.num == num && f.typ == protowire.BytesType {
			s = string(f.bytes)
		}
		return nil
	})
	return s, err
}

func decodeCompound(b []byte) (domain.Value, error) {
	var value domain.Value
	err := forEachField(b, func(f field) error {
		if f.typ != protowire.BytesType {
			return nil
		}
		var err error
		switch f.num {
		case fieldCompoundStyle:
			value, err = decodeStyle(f.bytes)
		case fieldCompoundStyleable:
			value, err = decodeRepeated(f.bytes, domain.ValueStyleable, fieldStyleableEntry, decodeStyleableEntry)
		case fieldCompoundArray:
			value, err = decodeRepeated(f.bytes, domain.ValueArray, fieldArrayElement, decodeArrayElement)
		case fieldCompoundPlural:
			value, err = decodeRepeated(f.bytes, domain.ValuePlural, fieldPluralEntry, decodePluralEntry)
		}
		return err
	})
	return value, err
}

func decodeStyle(b []byte) (domain.Value, error) {
	style := &domain.Style{}
	err := forEachField(b, func(f field) error {
		if f.typ != protowire.BytesType {
			return nil
		}
		switch f.num {
		case fieldStyleParent:
			id, err := decodeReference(f.bytes)
			if err != nil {
				return err
			}
			style.Parent = id
		case fieldStyleEntry:
			item, err := decodeStyleEntry(f.bytes)
			if err != nil {
				return err
			}
			style.Items = append(style.Items, item)
		}
		return nil
	})
	return domain.Value{Kind: domain.ValueStyle, Style: style}, err
}

func decodeStyleEntry(b []byte) (domain.StyleItem, error) {
	var item domain.StyleItem
	err := forEachField(b, func(f field) error {
		if f.typ != protowire.BytesType {
			return nil
		}
		switch f.num {
		case fieldStyleKey:
			id, err := decodeReference(f.bytes)
			if err != nil {
				return err
			}
			item.Attr = id
		case fieldStyleItem:
			value, err := decodeItem(f.bytes)
			if err != nil {
				return err
			}
			item.Value = value
		}
		return nil
	})
	return item, err
}

func decodeRepeated(b []byte, kind domain.ValueKind, num protowire.Number, decodeElement func([]byte) (domain.Value, error)) (domain.Value, error) {
	value := domain.Value{Kind: kind}
	err := forEachField(b, func(f field) error {
		if f.num != num || f.typ != protowire.BytesType {
			return nil
		}
		element, err := decodeElement(f.bytes)
		if err != nil {
			return err
		}
		value.Elements = append(value.Elements, element)
		return nil
	})
	return value, err
}

func decodeStyleableEntry(b []byte) (domain.Value, error) {
	var value domain.Value
	err := forEachField(b, func(f field) error {
		if f.num == fieldStyleableAttr && f.typ == protowire.BytesType {
			id, err := decodeReference(f.bytes)
			if err != nil {
				return err
			}
			value = domain.ReferenceValue(id)
		}
		return nil
	})
	return value, err
}

func decodeArrayElement(b []byte) (domain.Value, error) {
	var value domain.Value
	err := forEachField(b, func(f field) error {
		if f.num == fieldArrayItem && f.typ == protowire.BytesType {
			var err error
			value, err = decodeItem(f.bytes)
			return err
		}
		return nil
	})
	return value, err
}

func decodePluralEntry(b []byte) (domain.Value, error) {
	var value domain.Value
	var arity uint8
	err := forEachField(b, func(f field) error {
		switch {
		case f.num == fieldPluralArity && f.typ == protowire.VarintType:
			arity = uint8(f.varint)
		case f.num == fieldPluralItem && f.typ == protowire.BytesType:
			var err error
			value, err = decodeItem(f.bytes)
			return err
		}
		return nil
	})
	value.Arity = arity
	return value, err
}
