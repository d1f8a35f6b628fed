package domain

import "fmt"

const BaseModuleName = "base"

// Bundle is a full application bundle as read from disk. It is never mutated
// by the archive pipeline.
type Bundle struct {
	BundletoolVersion string
	// StoreArchive is the explicit store-archive setting; nil means the
	// version-gated default applies.
	StoreArchive *bool
	Modules      []Module
}

type Module struct {
	Name          string
	Manifest      Manifest
	ResourceTable *ResourceTable
}

func (b Bundle) BaseModule() (Module, error) {
	for _, module := range b.Modules {
		if module.Name == BaseModuleName {
			return module, nil
		}
	}
	return Module{}, ErrBaseModuleNotFound
}

func (b Bundle) Module(name string) (Module, error) {
	for _, module := range b.Modules {
		if module.Name == name {
			return module, nil
		}
	}
	return Module{}, fmt.Errorf("module %q not found", name)
}

// PackageName is the application id declared by the base module manifest.
func (b Bundle) PackageName() string {
	base, err := b.BaseModule()
	if err != nil {
		return ""
	}
	return base.Manifest.Package
}
