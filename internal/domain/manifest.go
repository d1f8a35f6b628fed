package domain

import (
	"strings"
)

const (
	ActionMain       = "android.intent.action.MAIN"
	CategoryLauncher = "android.intent.category.LAUNCHER"

	AttrName     = "android:name"
	AttrValue    = "android:value"
	AttrResource = "android:resource"
)

type Manifest struct {
	Package          string
	VersionCode      string
	VersionName      string
	MinSdkVersion    string
	TargetSdkVersion string
	Permissions      []string
	Application      Application
}

type Application struct {
	Attributes      []Attribute
	Activities      []Component
	ActivityAliases []Component
	Services        []Component
	Receivers       []Component
	Providers       []Component
	MetaData        []MetaData
}

type Component struct {
	Name          string
	Attributes    []Attribute
	IntentFilters []IntentFilter
	MetaData      []MetaData
}

type IntentFilter struct {
	Actions    []string
	Categories []string
}

type Attribute struct {
	Name  string
	Value string
}

type MetaData struct {
	Name     string
	Value    string
	Resource string
}

func (a Application) Attribute(name string) (string, bool) {
	return lookupAttribute(a.Attributes, name)
}

func (c Component) Attribute(name string) (string, bool) {
	return lookupAttribute(c.Attributes, name)
}

func lookupAttribute(attrs []Attribute, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (f IntentFilter) IsLauncher() bool {
	return contains(f.Actions, ActionMain) && contains(f.Categories, CategoryLauncher)
}

// IsHeadless reports whether the app declares no launcher entry point.
func (m Manifest) IsHeadless() bool {
	for _, components := range [][]Component{m.Application.Activities, m.Application.ActivityAliases} {
		for _, component := range components {
			for _, filter := range component.IntentFilters {
				if filter.IsLauncher() {
					return false
				}
			}
		}
	}
	return true
}

// ResourceReferences collects every attribute and meta-data value of the
// manifest that refers to a resource.
func (m Manifest) ResourceReferences() []Reference {
	var refs []Reference
	collect := func(value string) {
		if ref, ok := ParseReference(value); ok {
			refs = append(refs, ref)
		}
	}
	collectMeta := func(items []MetaData) {
		for _, item := range items {
			collect(item.Value)
			collect(item.Resource)
		}
	}

	for _, attr := range m.Application.Attributes {
		collect(attr.Value)
	}
	collectMeta(m.Application.MetaData)

	groups := [][]Component{
		m.Application.Activities,
		m.Application.ActivityAliases,
		m.Application.Services,
		m.Application.Receivers,
		m.Application.Providers,
	}
	for _, components := range groups {
		for _, component := range components {
			for _, attr := range component.Attributes {
				collect(attr.Value)
			}
			collectMeta(component.MetaData)
		}
	}

	return refs
}

// Reference is a resource reference as written in a manifest attribute: either
// a numeric id (@0x7f010000) or a symbolic name (@string/app_name,
// @android:style/Theme, ?attr/colorPrimary).
type Reference struct {
	ID        ResourceID
	Package   string
	Type      string
	Name      string
	Attribute bool
}

func (r Reference) IsFramework() bool {
	if r.ID != 0 {
		return r.ID.PackageID() == FrameworkPackageID
	}
	return r.Package == "android"
}

func (r Reference) String() string {
	prefix := "@"
	if r.Attribute {
		prefix = "?"
	}
	if r.ID != 0 {
		return prefix + r.ID.String()
	}
	if r.Package != "" {
		return prefix + r.Package + ":" + r.Type + "/" + r.Name
	}
	return prefix + r.Type + "/" + r.Name
}

func ParseReference(value string) (Reference, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 2 || (value[0] != '@' && value[0] != '?') {
		return Reference{}, false
	}
	ref := Reference{Attribute: value[0] == '?'}
	body := strings.TrimPrefix(value[1:], "+")
	if body == "null" || body == "empty" {
		return Reference{}, false
	}

	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		id, err := ParseResourceID(body)
		if err != nil || id == 0 {
			return Reference{}, false
		}
		ref.ID = id
		return ref, true
	}

	if pkg, rest, ok := strings.Cut(body, ":"); ok {
		ref.Package = pkg
		body = rest
	}
	typ, name, ok := strings.Cut(body, "/")
	if !ok {
		if !ref.Attribute || body == "" {
			return Reference{}, false
		}
		typ, name = "attr", body
	}
	if typ == "" || name == "" {
		return Reference{}, false
	}
	ref.Type = typ
	ref.Name = name
	return ref, true
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
