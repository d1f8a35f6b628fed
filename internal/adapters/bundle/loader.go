// Package bundle reads application bundles from a directory or a zip
// archive (.aab) into the domain model, and writes them back for fixtures.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/archivist/internal/adapters/manifest"
	"github.com/bnema/archivist/internal/adapters/resourcespb"
	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

// maxEntrySize caps a single archive entry once decompressed.
const maxEntrySize = 512 << 20

var ErrBundleEntryTooLarge = errors.New("bundle entry exceeds size limit")

type Loader struct {
	logger *slog.Logger
}

var _ ports.BundleLoader = (*Loader)(nil)

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// Load reads the bundle at path, which is either a bundle directory or a zip
// archive holding the same layout.
func (l *Loader) Load(ctx context.Context, bundlePath string) (domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bundle{}, err
	}

	info, err := os.Stat(bundlePath)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("stat bundle: %w", err)
	}
	if info.IsDir() {
		l.logger.Debug("loading bundle directory", "path", bundlePath)
		return l.LoadFS(ctx, osfs.New(bundlePath))
	}

	l.logger.Debug("loading bundle archive", "path", bundlePath)
	fs, err := unpackArchive(ctx, bundlePath)
	if err != nil {
		return domain.Bundle{}, err
	}
	return l.LoadFS(ctx, fs)
}

// LoadFS reads a bundle laid out at the root of fs.
func (l *Loader) LoadFS(ctx context.Context, fs billy.Filesystem) (domain.Bundle, error) {
	config, err := readConfig(fs)
	if err != nil {
		return domain.Bundle{}, err
	}

	entries, err := fs.ReadDir(".")
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("list bundle modules: %w", err)
	}

	bundle := domain.Bundle{
		BundletoolVersion: config.Bundletool.Version,
		StoreArchive:      config.storeArchive(),
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return domain.Bundle{}, err
		}

		module, ok, err := readModule(fs, entry.Name())
		if err != nil {
			return domain.Bundle{}, err
		}
		if !ok {
			continue
		}
		l.logger.Debug("module loaded", "module", module.Name, "resources", module.ResourceTable != nil)
		bundle.Modules = append(bundle.Modules, module)
	}

	sortModules(bundle.Modules)
	return bundle, nil
}

func readConfig(fs billy.Filesystem) (configSchema, error) {
	data, err := util.ReadFile(fs, ConfigFileName)
	if err != nil {
		return configSchema{}, fmt.Errorf("read bundle config: %w", err)
	}

	var config configSchema
	if err := toml.Unmarshal(data, &config); err != nil {
		return configSchema{}, fmt.Errorf("decode bundle config: %w", err)
	}
	if err := config.validateVersion(); err != nil {
		return configSchema{}, err
	}
	config.applyDefaults()

	return config, nil
}

// readModule reports ok=false for directories without a manifest, such as
// BUNDLE-METADATA.
func readModule(fs billy.Filesystem, name string) (domain.Module, bool, error) {
	manifestFile, err := fs.Open(path.Join(name, ManifestPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Module{}, false, nil
		}
		return domain.Module{}, false, fmt.Errorf("open %s manifest: %w", name, err)
	}
	defer manifestFile.Close()

	decoded, err := manifest.Decode(manifestFile)
	if err != nil {
		return domain.Module{}, false, fmt.Errorf("module %s: %w", name, err)
	}
	module := domain.Module{Name: name, Manifest: decoded}

	data, err := util.ReadFile(fs, path.Join(name, ResourceTablePath))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return module, true, nil
	case err != nil:
		return domain.Module{}, false, fmt.Errorf("read %s resource table: %w", name, err)
	}

	table, err := resourcespb.Decode(data)
	if err != nil {
		return domain.Module{}, false, fmt.Errorf("module %s: %w", name, err)
	}
	if err := table.Validate(); err != nil {
		return domain.Module{}, false, fmt.Errorf("module %s: %w", name, err)
	}
	module.ResourceTable = &table

	return module, true, nil
}

func sortModules(modules []domain.Module) {
	sort.SliceStable(modules, func(i, j int) bool {
		if (modules[i].Name == domain.BaseModuleName) != (modules[j].Name == domain.BaseModuleName) {
			return modules[i].Name == domain.BaseModuleName
		}
		return modules[i].Name < modules[j].Name
	})
}

func unpackArchive(ctx context.Context, archivePath string) (billy.Filesystem, error) {
	// Insecure names are rejected per entry below.
	reader, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("open bundle archive: %w", err)
	}
	defer reader.Close()

	fs := memfs.New()
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.FileInfo().IsDir() {
			continue
		}

		name, err := entryName(file.Name)
		if err != nil {
			return nil, err
		}
		if err := copyEntry(fs, name, file); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

func entryName(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("bundle entry %q escapes archive root", name)
	}
	return cleaned, nil
}

func copyEntry(fs billy.Filesystem, name string, file *zip.File) error {
	if file.UncompressedSize64 > maxEntrySize {
		return fmt.Errorf("%w: %s", ErrBundleEntryTooLarge, name)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open bundle entry %s: %w", name, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxEntrySize+1))
	if err != nil {
		return fmt.Errorf("read bundle entry %s: %w", name, err)
	}
	if len(data) > maxEntrySize {
		return fmt.Errorf("%w: %s", ErrBundleEntryTooLarge, name)
	}

	if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create bundle entry directory %s: %w", name, err)
	}
	if err := util.WriteFile(fs, name, data, 0o644); err != nil {
		return fmt.Errorf("unpack bundle entry %s: %w", name, err)
	}
	return nil
}
