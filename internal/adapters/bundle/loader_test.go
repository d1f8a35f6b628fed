package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/archivist/internal/domain"
)

func launcher(name string) domain.Component {
	return domain.Component{
		Name: name,
		IntentFilters: []domain.IntentFilter{{
			Actions:    []string{domain.ActionMain},
			Categories: []string{domain.CategoryLauncher},
		}},
	}
}

func fixtureBundle() domain.Bundle {
	enabled := true
	table := domain.ResourceTable{Packages: []domain.ResourcePackage{{
		ID:   domain.AppPackageID,
		Name: "com.example.app",
		Types: []domain.ResourceType{{ID: 1, Name: "string", Entries: []domain.ResourceEntry{
			{ID: 0, Name: "app_name", Values: []domain.ConfigValue{{Value: domain.StringValue("Example")}}},
		}}},
	}}}

	return domain.Bundle{
		BundletoolVersion: "1.15.6",
		StoreArchive:      &enabled,
		Modules: []domain.Module{
			{
				Name:     "feature_camera",
				Manifest: domain.Manifest{Package: "com.example.app"},
			},
			{
				Name: domain.BaseModuleName,
				Manifest: domain.Manifest{
					Package:     "com.example.app",
					VersionCode: "7",
					Application: domain.Application{
						Attributes: []domain.Attribute{{Name: "android:label", Value: "@string/app_name"}},
						Activities: []domain.Component{launcher(".Main")},
					},
				},
				ResourceTable: &table,
			},
		},
	}
}

func assertFixture(t *testing.T, got domain.Bundle) {
	t.Helper()

	assert.Equal(t, "1.15.6", got.BundletoolVersion)
	require.NotNil(t, got.StoreArchive)
	assert.True(t, *got.StoreArchive)

	require.Len(t, got.Modules, 2)
	assert.Equal(t, domain.BaseModuleName, got.Modules[0].Name, "base module sorts first")
	assert.Equal(t, "feature_camera", got.Modules[1].Name)
	assert.Nil(t, got.Modules[1].ResourceTable)

	base := got.Modules[0]
	assert.Equal(t, "com.example.app", base.Manifest.Package)
	assert.Equal(t, "7", base.Manifest.VersionCode)
	assert.False(t, base.Manifest.IsHeadless())
	require.NotNil(t, base.ResourceTable)

	entry, ok := base.ResourceTable.FindByName("com.example.app", "string", "app_name")
	require.True(t, ok)
	assert.Equal(t, domain.NewResourceID(domain.AppPackageID, 1, 0), entry.ID)
	assert.Equal(t, "Example", entry.Entry.Values[0].Value.Str)
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Save(osfs.New(dir), fixtureBundle()))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "BUNDLE-METADATA", "com.android.tools"), 0o755))

	got, err := NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)
	assertFixture(t, got)
}

func TestLoadArchive(t *testing.T) {
	t.Parallel()

	archivePath := filepath.Join(t.TempDir(), "app.aab")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	require.NoError(t, WriteArchive(f, fixtureBundle()))
	require.NoError(t, f.Close())

	got, err := NewLoader(nil).Load(context.Background(), archivePath)
	require.NoError(t, err)
	assertFixture(t, got)
}

func TestLoadFSWithoutStoreArchiveSetting(t *testing.T) {
	t.Parallel()

	b := fixtureBundle()
	b.StoreArchive = nil
	fs := memfs.New()
	require.NoError(t, Save(fs, b))

	got, err := NewLoader(nil).LoadFS(context.Background(), fs)
	require.NoError(t, err)
	assert.Nil(t, got.StoreArchive)
}

func TestLoadRejectsBadBundles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing config",
			files:   map[string]string{"base/manifest/AndroidManifest.xml": `<manifest package="a.b"/>`},
			wantErr: "read bundle config",
		},
		{
			name:    "malformed config",
			files:   map[string]string{ConfigFileName: "version = [", "base/manifest/AndroidManifest.xml": `<manifest package="a.b"/>`},
			wantErr: "decode bundle config",
		},
		{
			name:    "future schema",
			files:   map[string]string{ConfigFileName: "version = 2\n"},
			wantErr: "unsupported bundle config schema version 2",
		},
		{
			name:    "broken manifest",
			files:   map[string]string{ConfigFileName: "version = 1\n", "base/manifest/AndroidManifest.xml": "<manifest"},
			wantErr: "module base",
		},
		{
			name: "broken resource table",
			files: map[string]string{
				ConfigFileName:                      "version = 1\n",
				"base/manifest/AndroidManifest.xml": `<manifest package="a.b"/>`,
				"base/resources.pb":                 "\x12\x05\x01",
			},
			wantErr: "decode resource table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := memfs.New()
			for name, content := range tt.files {
				require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
			}

			_, err := NewLoader(nil).LoadFS(context.Background(), fs)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadRejectsEscapingArchiveEntries(t *testing.T) {
	t.Parallel()

	archivePath := filepath.Join(t.TempDir(), "evil.aab")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("../outside.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	_, err = NewLoader(nil).Load(context.Background(), archivePath)
	assert.ErrorContains(t, err, "escapes archive root")
}

func TestLoadMissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing.aab"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil).Load(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
