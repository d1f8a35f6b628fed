// Package manifest reads and writes AndroidManifest.xml documents and
// derives the archived manifest from a full one.
package manifest

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/bnema/archivist/internal/domain"
)

const (
	AndroidNamespace = "http://schemas.android.com/apk/res/android"

	androidPrefix = "android"
)

type xmlAttrs struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type xmlIntentFilter struct {
	Actions    []xmlAttrs `xml:"action"`
	Categories []xmlAttrs `xml:"category"`
}

type xmlComponent struct {
	Attrs         []xml.Attr        `xml:",any,attr"`
	IntentFilters []xmlIntentFilter `xml:"intent-filter"`
	MetaData      []xmlAttrs        `xml:"meta-data"`
}

type xmlApplication struct {
	Attrs           []xml.Attr     `xml:",any,attr"`
	Activities      []xmlComponent `xml:"activity"`
	ActivityAliases []xmlComponent `xml:"activity-alias"`
	Services        []xmlComponent `xml:"service"`
	Receivers       []xmlComponent `xml:"receiver"`
	Providers       []xmlComponent `xml:"provider"`
	MetaData        []xmlAttrs     `xml:"meta-data"`
}

type xmlManifest struct {
	XMLName     xml.Name        `xml:"manifest"`
	Attrs       []xml.Attr      `xml:",any,attr"`
	UsesSdk     *xmlAttrs       `xml:"uses-sdk"`
	Permissions []xmlAttrs      `xml:"uses-permission"`
	Application *xmlApplication `xml:"application"`
}

func Decode(r io.Reader) (domain.Manifest, error) {
	var doc xmlManifest
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}

	root := attributes(doc.Attrs)
	m := domain.Manifest{
		Package:     value(root, "package"),
		VersionCode: value(root, "android:versionCode"),
		VersionName: value(root, "android:versionName"),
	}
	if m.Package == "" {
		return domain.Manifest{}, fmt.Errorf("decode manifest: missing package attribute")
	}
	if doc.UsesSdk != nil {
		sdk := attributes(doc.UsesSdk.Attrs)
		m.MinSdkVersion = value(sdk, "android:minSdkVersion")
		m.TargetSdkVersion = value(sdk, "android:targetSdkVersion")
	}
	for _, permission := range doc.Permissions {
		if name := value(attributes(permission.Attrs), domain.AttrName); name != "" {
			m.Permissions = append(m.Permissions, name)
		}
	}
	if doc.Application != nil {
		app := doc.Application
		m.Application = domain.Application{
			Attributes:      attributes(app.Attrs),
			Activities:      components(app.Activities),
			ActivityAliases: components(app.ActivityAliases),
			Services:        components(app.Services),
			Receivers:       components(app.Receivers),
			Providers:       components(app.Providers),
			MetaData:        metaData(app.MetaData),
		}
	}
	return m, nil
}

// attributes converts decoded attributes to their prefixed form. Namespace
// declarations and attributes outside the android namespace are dropped.
func attributes(attrs []xml.Attr) []domain.Attribute {
	var out []domain.Attribute
	for _, attr := range attrs {
		switch attr.Name.Space {
		case "":
			if attr.Name.Local == "xmlns" {
				continue
			}
			out = append(out, domain.Attribute{Name: attr.Name.Local, Value: attr.Value})
		case AndroidNamespace, androidPrefix:
			out = append(out, domain.Attribute{Name: androidPrefix + ":" + attr.Name.Local, Value: attr.Value})
		}
	}
	return out
}

func value(attrs []domain.Attribute, name string) string {
	for _, attr := range attrs {
		if attr.Name == name {
			return attr.Value
		}
	}
	return ""
}

func without(attrs []domain.Attribute, names ...string) []domain.Attribute {
	var out []domain.Attribute
outer:
	for _, attr := range attrs {
		for _, name := range names {
			if attr.Name == name {
				continue outer
			}
		}
		out = append(out, attr)
	}
	return out
}

func components(elements []xmlComponent) []domain.Component {
	var out []domain.Component
	for _, element := range elements {
		attrs := attributes(element.Attrs)
		component := domain.Component{
			Name:       value(attrs, domain.AttrName),
			Attributes: without(attrs, domain.AttrName),
			MetaData:   metaData(element.MetaData),
		}
		for _, filter := range element.IntentFilters {
			component.IntentFilters = append(component.IntentFilters, domain.IntentFilter{
				Actions:    names(filter.Actions),
				Categories: names(filter.Categories),
			})
		}
		out = append(out, component)
	}
	return out
}

func names(elements []xmlAttrs) []string {
	var out []string
	for _, element := range elements {
		if name := value(attributes(element.Attrs), domain.AttrName); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func metaData(elements []xmlAttrs) []domain.MetaData {
	var out []domain.MetaData
	for _, element := range elements {
		attrs := attributes(element.Attrs)
		out = append(out, domain.MetaData{
			Name:     value(attrs, domain.AttrName),
			Value:    value(attrs, domain.AttrValue),
			Resource: value(attrs, domain.AttrResource),
		})
	}
	return out
}

// Encode writes m as an indented AndroidManifest.xml document.
func Encode(w io.Writer, m domain.Manifest) error {
	doc := xmlManifest{
		Attrs: []xml.Attr{
			rawAttr("xmlns:"+androidPrefix, AndroidNamespace),
			rawAttr("package", m.Package),
		},
	}
	doc.Attrs = appendIfSet(doc.Attrs, "android:versionCode", m.VersionCode)
	doc.Attrs = appendIfSet(doc.Attrs, "android:versionName", m.VersionName)

	if m.MinSdkVersion != "" || m.TargetSdkVersion != "" {
		var sdk []xml.Attr
		sdk = appendIfSet(sdk, "android:minSdkVersion", m.MinSdkVersion)
		sdk = appendIfSet(sdk, "android:targetSdkVersion", m.TargetSdkVersion)
		doc.UsesSdk = &xmlAttrs{Attrs: sdk}
	}
	for _, permission := range m.Permissions {
		doc.Permissions = append(doc.Permissions, named(permission))
	}

	app := m.Application
	doc.Application = &xmlApplication{
		Attrs:           rawAttrs(app.Attributes),
		Activities:      xmlComponents(app.Activities),
		ActivityAliases: xmlComponents(app.ActivityAliases),
		Services:        xmlComponents(app.Services),
		Receivers:       xmlComponents(app.Receivers),
		Providers:       xmlComponents(app.Providers),
		MetaData:        xmlMetaData(app.MetaData),
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// rawAttr keeps the prefix in the local name so the encoder writes it as is
// instead of inventing a namespace prefix.
func rawAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func rawAttrs(attrs []domain.Attribute) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, rawAttr(attr.Name, attr.Value))
	}
	return out
}

func appendIfSet(attrs []xml.Attr, name, value string) []xml.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, rawAttr(name, value))
}

func named(name string) xmlAttrs {
	return xmlAttrs{Attrs: []xml.Attr{rawAttr(domain.AttrName, name)}}
}

func xmlComponents(components []domain.Component) []xmlComponent {
	var out []xmlComponent
	for _, component := range components {
		element := xmlComponent{
			Attrs:    append([]xml.Attr{rawAttr(domain.AttrName, component.Name)}, rawAttrs(component.Attributes)...),
			MetaData: xmlMetaData(component.MetaData),
		}
		for _, filter := range component.IntentFilters {
			xmlFilter := xmlIntentFilter{}
			for _, action := range filter.Actions {
				xmlFilter.Actions = append(xmlFilter.Actions, named(action))
			}
			for _, category := range filter.Categories {
				xmlFilter.Categories = append(xmlFilter.Categories, named(category))
			}
			element.IntentFilters = append(element.IntentFilters, xmlFilter)
		}
		out = append(out, element)
	}
	return out
}

func xmlMetaData(items []domain.MetaData) []xmlAttrs {
	var out []xmlAttrs
	for _, item := range items {
		attrs := []xml.Attr{rawAttr(domain.AttrName, item.Name)}
		attrs = appendIfSet(attrs, domain.AttrValue, item.Value)
		attrs = appendIfSet(attrs, domain.AttrResource, item.Resource)
		out = append(out, xmlAttrs{Attrs: attrs})
	}
	return out
}

