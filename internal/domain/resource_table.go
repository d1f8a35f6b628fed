package domain

import (
	"fmt"
	"sort"
)

const StringTypeName = "string"

// ResourceTable is the package -> type -> entry -> (config -> value) hierarchy
// of an app's compiled resources.
//
// Unknown on each level holds the wire fields of that message the model does
// not cover (source pool, visibility, overlayable info and the like), in their
// original order, so a decoded table re-encodes without losing them.
type ResourceTable struct {
	Packages []ResourcePackage
	Unknown  []byte
}

type ResourcePackage struct {
	ID      uint8
	Name    string
	Types   []ResourceType
	Unknown []byte
}

type ResourceType struct {
	ID      uint8
	Name    string
	Entries []ResourceEntry
	Unknown []byte
}

type ResourceEntry struct {
	ID      uint16
	Name    string
	Values  []ConfigValue
	Unknown []byte
}

type TableEntry struct {
	ID          ResourceID
	PackageName string
	TypeName    string
	Entry       ResourceEntry
}

func (e TableEntry) QualifiedName() string {
	return fmt.Sprintf("%s:%s/%s", e.PackageName, e.TypeName, e.Entry.Name)
}

func (t ResourceTable) IsEmpty() bool {
	return len(t.Packages) == 0
}

func (t ResourceTable) EntryCount() int {
	count := 0
	for _, pkg := range t.Packages {
		for _, typ := range pkg.Types {
			count += len(typ.Entries)
		}
	}
	return count
}

// Entries flattens the table in table order.
func (t ResourceTable) Entries() []TableEntry {
	entries := make([]TableEntry, 0, t.EntryCount())
	for _, pkg := range t.Packages {
		for _, typ := range pkg.Types {
			for _, entry := range typ.Entries {
				entries = append(entries, TableEntry{
					ID:          NewResourceID(pkg.ID, typ.ID, entry.ID),
					PackageName: pkg.Name,
					TypeName:    typ.Name,
					Entry:       entry,
				})
			}
		}
	}
	return entries
}

func (t ResourceTable) IDs() ResourceIDSet {
	ids := make(ResourceIDSet, t.EntryCount())
	for _, entry := range t.Entries() {
		ids.Add(entry.ID)
	}
	return ids
}

func (t ResourceTable) Lookup(id ResourceID) (TableEntry, bool) {
	for _, pkg := range t.Packages {
		if pkg.ID != id.PackageID() {
			continue
		}
		for _, typ := range pkg.Types {
			if typ.ID != id.TypeID() {
				continue
			}
			for _, entry := range typ.Entries {
				if entry.ID == id.EntryID() {
					return TableEntry{ID: id, PackageName: pkg.Name, TypeName: typ.Name, Entry: entry}, true
				}
			}
		}
	}
	return TableEntry{}, false
}

func (t ResourceTable) FindByName(packageName, typeName, name string) (TableEntry, bool) {
	for _, pkg := range t.Packages {
		if pkg.Name != packageName {
			continue
		}
		for _, typ := range pkg.Types {
			if typ.Name != typeName {
				continue
			}
			for _, entry := range typ.Entries {
				if entry.Name == name {
					return TableEntry{
						ID:          NewResourceID(pkg.ID, typ.ID, entry.ID),
						PackageName: pkg.Name,
						TypeName:    typ.Name,
						Entry:       entry,
					}, true
				}
			}
		}
	}
	return TableEntry{}, false
}

func (t ResourceTable) Validate() error {
	packageIDs := make(map[uint8]struct{}, len(t.Packages))
	for _, pkg := range t.Packages {
		if pkg.ID == 0 {
			return fmt.Errorf("%w: package %q has id 0", ErrInvalidResourceTable, pkg.Name)
		}
		if _, ok := packageIDs[pkg.ID]; ok {
			return fmt.Errorf("%w: duplicate package id 0x%02x", ErrInvalidResourceTable, pkg.ID)
		}
		packageIDs[pkg.ID] = struct{}{}

		typeIDs := make(map[uint8]struct{}, len(pkg.Types))
		for _, typ := range pkg.Types {
			if typ.ID == 0 {
				return fmt.Errorf("%w: type %q in package %q has id 0", ErrInvalidResourceTable, typ.Name, pkg.Name)
			}
			if _, ok := typeIDs[typ.ID]; ok {
				return fmt.Errorf("%w: duplicate type id 0x%02x in package %q", ErrInvalidResourceTable, typ.ID, pkg.Name)
			}
			typeIDs[typ.ID] = struct{}{}

			entryIDs := make(map[uint16]struct{}, len(typ.Entries))
			for _, entry := range typ.Entries {
				id := NewResourceID(pkg.ID, typ.ID, entry.ID)
				if _, ok := entryIDs[entry.ID]; ok {
					return fmt.Errorf("%w: duplicate resource id %s", ErrInvalidResourceTable, id)
				}
				entryIDs[entry.ID] = struct{}{}

				if len(entry.Values) == 0 {
					return fmt.Errorf("%w: resource %s (%s) has no values", ErrInvalidResourceTable, id, entry.Name)
				}
				configs := make(map[string]struct{}, len(entry.Values))
				for _, value := range entry.Values {
					key := value.Config.Key()
					if _, ok := configs[key]; ok {
						return fmt.Errorf("%w: resource %s (%s) repeats configuration %q", ErrInvalidResourceTable, id, entry.Name, key)
					}
					configs[key] = struct{}{}
				}
			}
		}
	}
	return nil
}

func (t ResourceTable) Clone() ResourceTable {
	out := ResourceTable{Packages: make([]ResourcePackage, 0, len(t.Packages)), Unknown: cloneBytes(t.Unknown)}
	for _, pkg := range t.Packages {
		clonedPkg := ResourcePackage{ID: pkg.ID, Name: pkg.Name, Types: make([]ResourceType, 0, len(pkg.Types)), Unknown: cloneBytes(pkg.Unknown)}
		for _, typ := range pkg.Types {
			clonedType := ResourceType{ID: typ.ID, Name: typ.Name, Entries: make([]ResourceEntry, 0, len(typ.Entries)), Unknown: cloneBytes(typ.Unknown)}
			for _, entry := range typ.Entries {
				clonedType.Entries = append(clonedType.Entries, entry.clone())
			}
			clonedPkg.Types = append(clonedPkg.Types, clonedType)
		}
		out.Packages = append(out.Packages, clonedPkg)
	}
	return out
}

func (e ResourceEntry) clone() ResourceEntry {
	out := ResourceEntry{ID: e.ID, Name: e.Name, Unknown: cloneBytes(e.Unknown)}
	if e.Values == nil {
		return out
	}
	out.Values = make([]ConfigValue, len(e.Values))
	for i, value := range e.Values {
		config := value.Config
		config.Encoded = cloneBytes(config.Encoded)
		out.Values[i] = ConfigValue{Config: config, Value: value.Value.clone()}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Reduce returns a copy of the table holding only the entries whose id is in
// keep. Kept entries retain every configuration value and their unmodelled
// fields. Types left without
// entries are dropped; packages are always retained so later injection can
// still address them.
func (t ResourceTable) Reduce(keep ResourceIDSet) ResourceTable {
	out := ResourceTable{Packages: make([]ResourcePackage, 0, len(t.Packages)), Unknown: cloneBytes(t.Unknown)}
	for _, pkg := range t.Packages {
		reducedPkg := ResourcePackage{ID: pkg.ID, Name: pkg.Name, Unknown: cloneBytes(pkg.Unknown)}
		for _, typ := range pkg.Types {
			reducedType := ResourceType{ID: typ.ID, Name: typ.Name, Unknown: cloneBytes(typ.Unknown)}
			for _, entry := range typ.Entries {
				if !keep.Contains(NewResourceID(pkg.ID, typ.ID, entry.ID)) {
					continue
				}
				reducedType.Entries = append(reducedType.Entries, entry.clone())
			}
			if len(reducedType.Entries) > 0 {
				reducedPkg.Types = append(reducedPkg.Types, reducedType)
			}
		}
		out.Packages = append(out.Packages, reducedPkg)
	}
	return out
}

// InjectString adds a default-configuration string resource to the package
// named packageName and returns the new table and the allocated id.
//
// An empty table gets a fresh app package (0x7f). A non-empty table without a
// package of that name is rejected with ErrPackageNotFound.
func (t ResourceTable) InjectString(packageName, name, value string) (ResourceTable, ResourceID, error) {
	out := t.Clone()

	pkgIndex := -1
	for i, pkg := range out.Packages {
		if pkg.Name == packageName {
			pkgIndex = i
			break
		}
	}
	if pkgIndex < 0 {
		if !out.IsEmpty() {
			return ResourceTable{}, 0, fmt.Errorf("%w: %q", ErrPackageNotFound, packageName)
		}
		out.Packages = append(out.Packages, ResourcePackage{ID: AppPackageID, Name: packageName})
		pkgIndex = 0
	}
	pkg := &out.Packages[pkgIndex]

	typeIndex := -1
	for i, typ := range pkg.Types {
		if typ.Name == StringTypeName {
			typeIndex = i
			break
		}
	}

	entry := ResourceEntry{
		Name:   name,
		Values: []ConfigValue{{Value: StringValue(value)}},
	}

	if typeIndex < 0 {
		typeID, err := nextTypeID(pkg.Types)
		if err != nil {
			return ResourceTable{}, 0, fmt.Errorf("package %q: %w", packageName, err)
		}
		pkg.Types = append(pkg.Types, ResourceType{ID: typeID, Name: StringTypeName})
		sort.SliceStable(pkg.Types, func(i, j int) bool { return pkg.Types[i].ID < pkg.Types[j].ID })
		for i, typ := range pkg.Types {
			if typ.ID == typeID {
				typeIndex = i
				break
			}
		}
	} else {
		for _, existing := range pkg.Types[typeIndex].Entries {
			if existing.Name == name {
				return ResourceTable{}, 0, fmt.Errorf("%w: %s:%s/%s", ErrResourceAlreadyExists, packageName, StringTypeName, name)
			}
		}
		entryID, err := nextEntryID(pkg.Types[typeIndex].Entries)
		if err != nil {
			return ResourceTable{}, 0, fmt.Errorf("package %q type %q: %w", packageName, StringTypeName, err)
		}
		entry.ID = entryID
	}

	typ := &pkg.Types[typeIndex]
	typ.Entries = append(typ.Entries, entry)

	return out, NewResourceID(pkg.ID, typ.ID, entry.ID), nil
}

func nextTypeID(types []ResourceType) (uint8, error) {
	var max uint8
	for _, typ := range types {
		if typ.ID > max {
			max = typ.ID
		}
	}
	if max == 0xff {
		return 0, fmt.Errorf("%w: no type id left", ErrResourceIDExhausted)
	}
	return max + 1, nil
}

func nextEntryID(entries []ResourceEntry) (uint16, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	var max uint16
	for _, entry := range entries {
		if entry.ID > max {
			max = entry.ID
		}
	}
	if max == 0xffff {
		return 0, fmt.Errorf("%w: no entry id left", ErrResourceIDExhausted)
	}
	return max + 1, nil
}
