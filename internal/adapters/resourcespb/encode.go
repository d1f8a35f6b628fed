package resourcespb

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bnema/archivist/internal/domain"
)

// Encode writes table in aapt2's proto format. Values and configurations that
// carry their decoded bytes are written back as-is, and unmodelled fields are
// placed around the repeated field by field number.
func Encode(table domain.ResourceTable) []byte {
	before, after := splitUnknown(table.Unknown, fieldTablePackage)
	b := append([]byte(nil), before...)
	for _, pkg := range table.Packages {
		b = appendMessage(b, fieldTablePackage, encodePackage(pkg))
	}
	return append(b, after...)
}

// splitUnknown separates raw fields numbered below pivot from the rest.
func splitUnknown(raw []byte, pivot protowire.Number) (before, after []byte) {
	if len(raw) == 0 {
		return nil, nil
	}
	err := forEachField(raw, func(f field) error {
		if f.num < pivot {
			before = append(before, f.raw...)
		} else {
			after = append(after, f.raw...)
		}
		return nil
	})
	if err != nil {
		return nil, raw
	}
	return before, after
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeID(id uint64) []byte {
	return appendVarint(nil, fieldIDValue, id)
}

func encodePackage(pkg domain.ResourcePackage) []byte {
	before, after := splitUnknown(pkg.Unknown, fieldPackageType)
	b := appendMessage(nil, fieldPackageID, encodeID(uint64(pkg.ID)))
	b = appendString(b, fieldPackageName, pkg.Name)
	b = append(b, before...)
	for _, typ := range pkg.Types {
		b = appendMessage(b, fieldPackageType, encodeType(typ))
	}
	return append(b, after...)
}

func encodeType(typ domain.ResourceType) []byte {
	before, after := splitUnknown(typ.Unknown, fieldTypeEntry)
	b := appendMessage(nil, fieldTypeID, encodeID(uint64(typ.ID)))
	b = appendString(b, fieldTypeName, typ.Name)
	b = append(b, before...)
	for _, entry := range typ.Entries {
		b = appendMessage(b, fieldTypeEntry, encodeEntry(entry))
	}
	return append(b, after...)
}

// encodeEntry keeps visibility, allow_new and overlayable_item ahead of the
// config values and staged_id after them, matching aapt2's field order.
func encodeEntry(entry domain.ResourceEntry) []byte {
	before, after := splitUnknown(entry.Unknown, fieldEntryConfigValue)
	b := appendMessage(nil, fieldEntryID, encodeID(uint64(entry.ID)))
	b = appendString(b, fieldEntryName, entry.Name)
	b = append(b, before...)
	for _, cv := range entry.Values {
		b = appendMessage(b, fieldEntryConfigValue, encodeConfigValue(cv))
	}
	return append(b, after...)
}

func encodeConfigValue(cv domain.ConfigValue) []byte {
	b := appendMessage(nil, fieldConfigValueConfig, encodeConfiguration(cv.Config))
	value := cv.Value.Encoded
	if value == nil {
		value = encodeValue(cv.Value)
	}
	return appendMessage(b, fieldConfigValueValue, value)
}

func encodeConfiguration(config domain.Configuration) []byte {
	if config.Encoded != nil {
		return config.Encoded
	}
	b := appendVarint(nil, fieldConfigMcc, uint64(config.Mcc))
	b = appendVarint(b, fieldConfigMnc, uint64(config.Mnc))
	b = appendString(b, fieldConfigLocale, config.Locale)
	b = appendVarint(b, fieldConfigDensity, uint64(config.Density))
	b = appendVarint(b, fieldConfigSdkVersion, uint64(config.SdkVersion))
	return appendString(b, fieldConfigProduct, config.Product)
}

func encodeValue(v domain.Value) []byte {
	switch v.Kind {
	case domain.ValueString, domain.ValueReference, domain.ValueFile:
		return appendMessage(nil, fieldValueItem, encodeItem(v))
	case domain.ValueStyle, domain.ValueArray, domain.ValuePlural, domain.ValueStyleable:
		return appendMessage(nil, fieldValueCompound, encodeCompound(v))
	default:
		return []byte{}
	}
}

func encodeItem(v domain.Value) []byte {
	switch v.Kind {
	case domain.ValueString:
		return appendMessage(nil, fieldItemStr, appendString(nil, fieldStringValue, v.Str))
	case domain.ValueReference:
		return appendMessage(nil, fieldItemRef, encodeReference(v.Ref))
	case domain.ValueFile:
		return appendMessage(nil, fieldItemFile, appendString(nil, fieldFilePath, v.Str))
	default:
		return []byte{}
	}
}

func encodeReference(id domain.ResourceID) []byte {
	return appendVarint(nil, fieldReferenceID, uint64(id))
}

func encodeCompound(v domain.Value) []byte {
	switch v.Kind {
	case domain.ValueStyle:
		return appendMessage(nil, fieldCompoundStyle, encodeStyle(v.Style))
	case domain.ValueStyleable:
		var b []byte
		for _, element := range v.Elements {
			entry := appendMessage(nil, fieldStyleableAttr, encodeReference(element.Ref))
			b = appendMessage(b, fieldStyleableEntry, entry)
		}
		return appendMessage(nil, fieldCompoundStyleable, b)
	case domain.ValueArray:
		var b []byte
		for _, element := range v.Elements {
			b = appendMessage(b, fieldArrayElement, appendMessage(nil, fieldArrayItem, encodeItem(element)))
		}
		return appendMessage(nil, fieldCompoundArray, b)
	case domain.ValuePlural:
		var b []byte
		for _, element := range v.Elements {
			entry := appendVarint(nil, fieldPluralArity, uint64(element.Arity))
			entry = appendMessage(entry, fieldPluralItem, encodeItem(element))
			b = appendMessage(b, fieldPluralEntry, entry)
		}
		return appendMessage(nil, fieldCompoundPlural, b)
	default:
		return []byte{}
	}
}

func encodeStyle(style *domain.Style) []byte {
	if style == nil {
		return []byte{}
	}
	var b []byte
	if style.Parent != 0 {
		b = appendMessage(b, fieldStyleParent, encodeReference(style.Parent))
	}
	for _, item := range style.Items {
		entry := appendMessage(nil, fieldStyleKey, encodeReference(item.Attr))
		entry = appendMessage(entry, fieldStyleItem, encodeItem(item.Value))
		b = appendMessage(b, fieldStyleEntry, entry)
	}
	return b
}
