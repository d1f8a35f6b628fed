package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	FrameworkPackageID uint8 = 0x01
	AppPackageID       uint8 = 0x7f
)

// ResourceID packs package, type and entry ids as 0xPPTTEEEE.
type ResourceID uint32

func NewResourceID(packageID, typeID uint8, entryID uint16) ResourceID {
	return ResourceID(uint32(packageID)<<24 | uint32(typeID)<<16 | uint32(entryID))
}

func ParseResourceID(s string) (ResourceID, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if trimmed == "" {
		return 0, fmt.Errorf("invalid resource id %q", s)
	}

	value, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid resource id %q: %w", s, err)
	}

	return ResourceID(value), nil
}

func (id ResourceID) PackageID() uint8 {
	return uint8(id >> 24)
}

func (id ResourceID) TypeID() uint8 {
	return uint8(id >> 16)
}

func (id ResourceID) EntryID() uint16 {
	return uint16(id)
}

func (id ResourceID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

type ResourceIDSet map[ResourceID]struct{}

func NewResourceIDSet(ids ...ResourceID) ResourceIDSet {
	set := make(ResourceIDSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s ResourceIDSet) Add(id ResourceID) {
	s[id] = struct{}{}
}

func (s ResourceIDSet) Contains(id ResourceID) bool {
	_, ok := s[id]
	return ok
}

func (s ResourceIDSet) Len() int {
	return len(s)
}

func (s ResourceIDSet) Sorted() []ResourceID {
	ids := make([]ResourceID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
