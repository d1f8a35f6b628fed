package resourcespb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bnema/archivist/internal/domain"
)

func sampleTable() domain.ResourceTable {
	attr := domain.NewResourceID(domain.AppPackageID, 0x01, 0)
	color := domain.NewResourceID(domain.AppPackageID, 0x03, 0)

	return domain.ResourceTable{Packages: []domain.ResourcePackage{{
		ID:   domain.AppPackageID,
		Name: "com.example.app",
		Types: []domain.ResourceType{
			{ID: 0x01, Name: "attr", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "accent", Values: []domain.ConfigValue{{Value: domain.ReferenceValue(color)}}},
			}},
			{ID: 0x02, Name: "string", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "app_name", Values: []domain.ConfigValue{
					{Value: domain.StringValue("App")},
					{Config: domain.Configuration{Locale: "de", SdkVersion: 21}, Value: domain.StringValue("Anwendung")},
				}},
			}},
			{ID: 0x03, Name: "drawable", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "icon", Values: []domain.ConfigValue{
					{Config: domain.Configuration{Density: 480}, Value: domain.Value{Kind: domain.ValueFile, Str: "res/drawable-xxhdpi/icon.png"}},
				}},
			}},
			{ID: 0x04, Name: "style", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "AppTheme", Values: []domain.ConfigValue{{Value: domain.Value{
					Kind: domain.ValueStyle,
					Style: &domain.Style{
						Parent: domain.NewResourceID(domain.FrameworkPackageID, 0x0f, 0x01),
						Items:  []domain.StyleItem{{Attr: attr, Value: domain.ReferenceValue(color)}},
					},
				}}}},
			}},
			{ID: 0x05, Name: "array", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "planets", Values: []domain.ConfigValue{{Value: domain.Value{
					Kind:     domain.ValueArray,
					Elements: []domain.Value{domain.StringValue("earth"), domain.ReferenceValue(color)},
				}}}},
			}},
			{ID: 0x06, Name: "plurals", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "items", Values: []domain.ConfigValue{{Value: domain.Value{
					Kind: domain.ValuePlural,
					Elements: []domain.Value{
						{Kind: domain.ValueString, Str: "%d item", Arity: 1},
						{Kind: domain.ValueString, Str: "%d items", Arity: 5},
					},
				}}}},
			}},
			{ID: 0x07, Name: "styleable", Entries: []domain.ResourceEntry{
				{ID: 0, Name: "Widget", Values: []domain.ConfigValue{{Value: domain.Value{
					Kind:     domain.ValueStyleable,
					Elements: []domain.Value{domain.ReferenceValue(attr)},
				}}}},
			}},
		},
	}}}
}

func stripEncoded(table domain.ResourceTable) domain.ResourceTable {
	for pi := range table.Packages {
		for ti := range table.Packages[pi].Types {
			for ei := range table.Packages[pi].Types[ti].Entries {
				values := table.Packages[pi].Types[ti].Entries[ei].Values
				for vi := range values {
					values[vi].Config.Encoded = nil
					values[vi].Value.Encoded = nil
				}
			}
		}
	}
	return table
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	want := sampleTable()

	got, err := Decode(Encode(want))
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, want, stripEncoded(got))
}

func TestDecodeKeepsWireBytes(t *testing.T) {
	t.Parallel()

	data := Encode(sampleTable())

	decoded, err := Decode(data)
	require.NoError(t, err)

	entry, ok := decoded.FindByName("com.example.app", "string", "app_name")
	require.True(t, ok)
	require.Len(t, entry.Entry.Values, 2)
	assert.NotEmpty(t, entry.Entry.Values[0].Value.Encoded)
	assert.NotEmpty(t, entry.Entry.Values[1].Config.Encoded)

	assert.Equal(t, data, Encode(decoded), "decoded table re-encodes byte for byte")
}

func TestDecodePreservesUnmodelledValues(t *testing.T) {
	t.Parallel()

	// Item.prim (field 7) is not modelled; the value must survive untouched.
	prim := protowire.AppendTag(nil, 7, protowire.BytesType)
	prim = protowire.AppendBytes(prim, []byte{0x08, 0x2a})
	value := appendMessage(nil, fieldValueItem, prim)

	// Configuration.orientation (field 11) is not modelled either.
	config := protowire.AppendTag(nil, 11, protowire.VarintType)
	config = protowire.AppendVarint(config, 1)

	table := domain.ResourceTable{Packages: []domain.ResourcePackage{{
		ID:   domain.AppPackageID,
		Name: "com.example.app",
		Types: []domain.ResourceType{{ID: 1, Name: "integer", Entries: []domain.ResourceEntry{{
			Name: "answer",
			Values: []domain.ConfigValue{
				{Value: domain.Value{Encoded: value}},
				{Config: domain.Configuration{Encoded: config}, Value: domain.Value{Encoded: value}},
			},
		}}}},
	}}}

	decoded, err := Decode(Encode(table))
	require.NoError(t, err)
	require.NoError(t, decoded.Validate(), "unmodelled qualifiers keep configurations distinct")

	entry, ok := decoded.FindByName("com.example.app", "integer", "answer")
	require.True(t, ok)
	assert.Equal(t, domain.ValueUnknown, entry.Entry.Values[0].Value.Kind)
	assert.Equal(t, value, entry.Entry.Values[0].Value.Encoded)
	assert.Equal(t, config, entry.Entry.Values[1].Config.Encoded)
	assert.Equal(t, Encode(table), Encode(decoded))
}

func TestDecodeKeepsUnknownTableFields(t *testing.T) {
	t.Parallel()

	unknown := protowire.AppendTag(nil, 1, protowire.BytesType)
	unknown = protowire.AppendBytes(unknown, []byte("string pool"))
	unknown = protowire.AppendTag(unknown, 99, protowire.Fixed32Type)
	unknown = protowire.AppendFixed32(unknown, 7)
	data := append(append([]byte(nil), unknown...), Encode(sampleTable())...)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, sampleTable().EntryCount(), decoded.EntryCount())
	assert.Equal(t, unknown, decoded.Unknown)

	again, err := Decode(Encode(decoded))
	require.NoError(t, err)
	assert.Equal(t, unknown, again.Unknown)
}

// entryWithVisibility builds a table in aapt2 field order whose only entry is
// public and staged, with a source pool and tool fingerprint on the table.
func entryWithVisibility() []byte {
	visibility := protowire.AppendTag(nil, 1, protowire.VarintType)
	visibility = protowire.AppendVarint(visibility, 2)

	item := appendMessage(nil, fieldItemStr, appendString(nil, fieldStringValue, "App"))
	configValue := appendMessage(nil, fieldConfigValueConfig, nil)
	configValue = appendMessage(configValue, fieldConfigValueValue, appendMessage(nil, fieldValueItem, item))

	entry := appendMessage(nil, fieldEntryID, encodeID(0))
	entry = appendString(entry, fieldEntryName, "app_name")
	entry = appendMessage(entry, 3, visibility)
	entry = appendMessage(entry, fieldEntryConfigValue, configValue)
	entry = appendMessage(entry, 7, encodeID(0x7f020001))

	typ := appendMessage(nil, fieldTypeID, encodeID(1))
	typ = appendString(typ, fieldTypeName, "string")
	typ = appendMessage(typ, fieldTypeEntry, entry)

	pkg := appendMessage(nil, fieldPackageID, encodeID(uint64(domain.AppPackageID)))
	pkg = appendString(pkg, fieldPackageName, "com.example.app")
	pkg = appendMessage(pkg, fieldPackageType, typ)

	table := appendMessage(nil, 1, []byte("source pool"))
	table = appendMessage(table, fieldTablePackage, pkg)
	return appendString(table, 4, "aapt2 9.0")
}

func TestEntryVisibilitySurvivesReencode(t *testing.T) {
	t.Parallel()

	data := entryWithVisibility()

	decoded, err := Decode(data)
	require.NoError(t, err)

	entry, ok := decoded.FindByName("com.example.app", "string", "app_name")
	require.True(t, ok)
	assert.NotEmpty(t, entry.Entry.Unknown)
	assert.Equal(t, "App", entry.Entry.Values[0].Value.Str)

	assert.Equal(t, data, Encode(decoded), "entry visibility and table fields re-encode byte for byte")
}

func TestReduceKeepsEntryVisibility(t *testing.T) {
	t.Parallel()

	data := entryWithVisibility()
	decoded, err := Decode(data)
	require.NoError(t, err)

	reduced := decoded.Reduce(decoded.IDs())
	assert.Equal(t, data, Encode(reduced))

	injected, _, err := reduced.InjectString("com.example.app", "store", "com.android.vending")
	require.NoError(t, err)
	again, err := Decode(Encode(injected))
	require.NoError(t, err)

	entry, ok := again.FindByName("com.example.app", "string", "app_name")
	require.True(t, ok)
	assert.Equal(t, decoded.Packages[0].Types[0].Entries[0].Unknown, entry.Entry.Unknown)
	assert.Equal(t, decoded.Unknown, again.Unknown)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "truncated tag", data: []byte{0x80}},
		{name: "truncated bytes", data: []byte{0x12, 0x05, 0x01}},
		{name: "bad nested package", data: appendMessage(nil, fieldTablePackage, []byte{0x0a, 0x09})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.ErrorContains(t, err, "decode resource table")
		})
	}
}

func TestDecodeRejectsOutOfRangeIDs(t *testing.T) {
	t.Parallel()

	pkg := appendMessage(nil, fieldPackageID, encodeID(0x1ff))
	_, err := Decode(appendMessage(nil, fieldTablePackage, pkg))
	assert.ErrorContains(t, err, "out of range")
}

func TestEncodeEmptyTable(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Encode(domain.ResourceTable{}))

	decoded, err := Decode(nil)
	require.NoError(t, err)
	assert.True(t, decoded.IsEmpty())
}
