package domain

const (
	ReactivationStoreResourceName = "reactivation_app_store_package_name"
	PlayStorePackageName          = "com.android.vending"
)

// ArchivedArtifact is the minimal installable representation of a bundle:
// minimized manifest, reduced resource table with the injected store
// resource, and the placeholder dex file.
type ArchivedArtifact struct {
	SourceModule     string
	PackageName      string
	StorePackageName string
	Manifest         Manifest
	ResourceTable    ResourceTable
	InjectedResource ResourceID
	CodeStubPath     string
}
