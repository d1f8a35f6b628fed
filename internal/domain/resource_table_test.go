package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() ResourceTable {
	return ResourceTable{Packages: []ResourcePackage{{
		ID:   AppPackageID,
		Name: "com.example.app",
		Types: []ResourceType{
			{ID: 1, Name: "drawable", Entries: []ResourceEntry{
				{ID: 0, Name: "icon", Values: []ConfigValue{
					{Config: Configuration{Density: 160}, Value: Value{Kind: ValueFile, Str: "res/drawable-mdpi/icon.png"}},
					{Config: Configuration{Density: 480}, Value: Value{Kind: ValueFile, Str: "res/drawable-xxhdpi/icon.png"}},
				}},
				{ID: 1, Name: "banner", Values: []ConfigValue{{Value: Value{Kind: ValueFile, Str: "res/drawable/banner.png"}}}},
			}},
			{ID: 2, Name: "string", Entries: []ResourceEntry{
				{ID: 0, Name: "app_name", Values: []ConfigValue{
					{Value: StringValue("Example")},
					{Config: Configuration{Locale: "fr"}, Value: StringValue("Exemple")},
				}},
				{ID: 1, Name: "unused", Values: []ConfigValue{{Value: StringValue("unused")}}},
			}},
			{ID: 3, Name: "style", Entries: []ResourceEntry{
				{ID: 0, Name: "AppTheme", Values: []ConfigValue{{Value: Value{Kind: ValueStyle, Style: &Style{Parent: NewResourceID(1, 0x10, 5)}}}}},
			}},
		},
	}}}
}

func TestResourceTableValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ResourceTable)
		wantErr string
	}{
		{name: "valid", mutate: func(*ResourceTable) {}},
		{
			name: "duplicate entry id",
			mutate: func(table *ResourceTable) {
				table.Packages[0].Types[1].Entries[1].ID = 0
			},
			wantErr: "duplicate resource id 0x7f020000",
		},
		{
			name: "entry without values",
			mutate: func(table *ResourceTable) {
				table.Packages[0].Types[1].Entries[1].Values = nil
			},
			wantErr: "has no values",
		},
		{
			name: "repeated configuration",
			mutate: func(table *ResourceTable) {
				table.Packages[0].Types[1].Entries[0].Values[1].Config = Configuration{}
			},
			wantErr: "repeats configuration",
		},
		{
			name: "duplicate type id",
			mutate: func(table *ResourceTable) {
				table.Packages[0].Types[2].ID = 1
			},
			wantErr: "duplicate type id 0x01",
		},
		{
			name: "zero package id",
			mutate: func(table *ResourceTable) {
				table.Packages[0].ID = 0
			},
			wantErr: "has id 0",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			table := sampleTable()
			tc.mutate(&table)
			err := table.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidResourceTable)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestReduceKeepsOnlyRequestedEntriesWithAllConfigurations(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	keep := NewResourceIDSet(
		NewResourceID(AppPackageID, 1, 0),
		NewResourceID(AppPackageID, 2, 0),
		NewResourceID(AppPackageID, 9, 9),
	)

	reduced := table.Reduce(keep)

	require.NoError(t, reduced.Validate())
	assert.Equal(t, 2, reduced.EntryCount())
	for _, entry := range reduced.Entries() {
		assert.True(t, keep.Contains(entry.ID), "unexpected entry %s", entry.ID)
		original, ok := table.Lookup(entry.ID)
		require.True(t, ok)
		assert.Equal(t, original.Entry, entry.Entry)
	}

	icon, ok := reduced.Lookup(NewResourceID(AppPackageID, 1, 0))
	require.True(t, ok)
	assert.Len(t, icon.Entry.Values, 2)

	require.Len(t, reduced.Packages, 1)
	assert.Len(t, reduced.Packages[0].Types, 2, "style type has no kept entries and is dropped")
}

func TestReduceWithAllIDsIsIdentity(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	assert.Equal(t, table, table.Reduce(table.IDs()))
}

func TestReduceWithEmptyKeepSetRetainsPackages(t *testing.T) {
	t.Parallel()

	reduced := sampleTable().Reduce(NewResourceIDSet())

	assert.Equal(t, 0, reduced.EntryCount())
	require.Len(t, reduced.Packages, 1)
	assert.Equal(t, "com.example.app", reduced.Packages[0].Name)
	assert.Empty(t, reduced.Packages[0].Types)
}

func TestReduceDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	reduced := table.Reduce(table.IDs())
	reduced.Packages[0].Types[1].Entries[0].Values[0].Value.Str = "changed"

	assert.Equal(t, "Example", table.Packages[0].Types[1].Entries[0].Values[0].Value.Str)
}

func TestReduceCarriesUnmodelledFields(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	table.Unknown = []byte{0x0a, 0x01, 0x00}
	table.Packages[0].Types[0].Entries[0].Unknown = []byte{0x1a, 0x02, 0x08, 0x02}

	icon := NewResourceID(AppPackageID, 1, 0)
	reduced := table.Reduce(NewResourceIDSet(icon))

	assert.Equal(t, table.Unknown, reduced.Unknown)
	got, ok := reduced.Lookup(icon)
	require.True(t, ok)
	assert.Equal(t, []byte{0x1a, 0x02, 0x08, 0x02}, got.Entry.Unknown)

	got.Entry.Unknown[0] = 0xff
	assert.Equal(t, byte(0x1a), table.Packages[0].Types[0].Entries[0].Unknown[0], "reduced table does not alias input")
}

func TestInjectStringReusesExistingStringType(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	before := table.IDs()

	injected, id, err := table.InjectString("com.example.app", ReactivationStoreResourceName, PlayStorePackageName)
	require.NoError(t, err)

	assert.Equal(t, NewResourceID(AppPackageID, 2, 2), id)
	assert.False(t, before.Contains(id))
	assert.Equal(t, table.EntryCount()+1, injected.EntryCount())
	require.NoError(t, injected.Validate())

	entry, ok := injected.FindByName("com.example.app", StringTypeName, ReactivationStoreResourceName)
	require.True(t, ok)
	assert.Equal(t, id, entry.ID)
	require.Len(t, entry.Entry.Values, 1)
	assert.True(t, entry.Entry.Values[0].Config.IsDefault())
	assert.Equal(t, StringValue(PlayStorePackageName), entry.Entry.Values[0].Value)

	for _, original := range table.Entries() {
		got, ok := injected.Lookup(original.ID)
		require.True(t, ok)
		assert.Equal(t, original, got)
	}
	_, leaked := table.Lookup(id)
	assert.False(t, leaked, "input table is left untouched")
}

func TestInjectStringAllocatesNewTypeWhenMissing(t *testing.T) {
	t.Parallel()

	table := sampleTable().Reduce(NewResourceIDSet(NewResourceID(AppPackageID, 3, 0)))

	injected, id, err := table.InjectString("com.example.app", "store", "com.example.store")
	require.NoError(t, err)

	assert.Equal(t, NewResourceID(AppPackageID, 4, 0), id)
	require.NoError(t, injected.Validate())
	entry, ok := injected.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, StringTypeName, entry.TypeName)
	assert.Equal(t, "com.example.store", entry.Entry.Values[0].Value.Str)
}

func TestInjectStringCreatesPackageInEmptyTable(t *testing.T) {
	t.Parallel()

	injected, id, err := ResourceTable{}.InjectString("com.example.app", ReactivationStoreResourceName, PlayStorePackageName)
	require.NoError(t, err)

	assert.Equal(t, NewResourceID(AppPackageID, 1, 0), id)
	require.Len(t, injected.Packages, 1)
	assert.Equal(t, "com.example.app", injected.Packages[0].Name)
	assert.Equal(t, 1, injected.EntryCount())
	require.NoError(t, injected.Validate())
}

func TestInjectStringRejectsUnknownPackage(t *testing.T) {
	t.Parallel()

	_, _, err := sampleTable().InjectString("com.other.app", "store", "x")
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestInjectStringRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	_, _, err := sampleTable().InjectString("com.example.app", "app_name", "x")
	assert.ErrorIs(t, err, ErrResourceAlreadyExists)
}

func TestInjectStringReportsExhaustedEntryIDs(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	table.Packages[0].Types[1].Entries[1].ID = 0xffff

	_, _, err := table.InjectString("com.example.app", "store", "x")
	assert.ErrorIs(t, err, ErrResourceIDExhausted)
}

func TestValueReferencesFollowsNestedValues(t *testing.T) {
	t.Parallel()

	parent := NewResourceID(AppPackageID, 3, 1)
	attr := NewResourceID(AppPackageID, 5, 0)
	color := NewResourceID(AppPackageID, 6, 0)
	arrayItem := NewResourceID(AppPackageID, 2, 7)

	style := Value{Kind: ValueStyle, Style: &Style{
		Parent: parent,
		Items:  []StyleItem{{Attr: attr, Value: ReferenceValue(color)}},
	}}
	array := Value{Kind: ValueArray, Elements: []Value{StringValue("literal"), ReferenceValue(arrayItem)}}

	assert.Equal(t, []ResourceID{parent, attr, color}, style.References())
	assert.Equal(t, []ResourceID{arrayItem}, array.References())
	assert.Empty(t, StringValue("plain").References())
}
