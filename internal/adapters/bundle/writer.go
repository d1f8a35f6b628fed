package bundle

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/archivist/internal/adapters/manifest"
	"github.com/bnema/archivist/internal/adapters/resourcespb"
	"github.com/bnema/archivist/internal/domain"
)

// Save lays b out at the root of fs in the layout Load reads.
func Save(fs billy.Filesystem, b domain.Bundle) error {
	files, err := bundleFiles(b)
	if err != nil {
		return err
	}

	for _, name := range sortedNames(files) {
		if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
			return fmt.Errorf("create bundle directory %s: %w", path.Dir(name), err)
		}
		if err := util.WriteFile(fs, name, files[name], 0o644); err != nil {
			return fmt.Errorf("write bundle file %s: %w", name, err)
		}
	}
	return nil
}

// WriteArchive writes b as a zip archive to w.
func WriteArchive(w io.Writer, b domain.Bundle) error {
	files, err := bundleFiles(b)
	if err != nil {
		return err
	}

	archive := zip.NewWriter(w)
	for _, name := range sortedNames(files) {
		entry, err := archive.Create(name)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := entry.Write(files[name]); err != nil {
			return fmt.Errorf("write archive entry %s: %w", name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("finish bundle archive: %w", err)
	}
	return nil
}

func bundleFiles(b domain.Bundle) (map[string][]byte, error) {
	config, err := toml.Marshal(toConfigSchema(b))
	if err != nil {
		return nil, fmt.Errorf("encode bundle config: %w", err)
	}

	files := map[string][]byte{ConfigFileName: config}
	for _, module := range b.Modules {
		var buf bytes.Buffer
		if err := manifest.Encode(&buf, module.Manifest); err != nil {
			return nil, fmt.Errorf("module %s: %w", module.Name, err)
		}
		files[path.Join(module.Name, ManifestPath)] = buf.Bytes()

		if module.ResourceTable != nil {
			files[path.Join(module.Name, ResourceTablePath)] = resourcespb.Encode(*module.ResourceTable)
		}
	}
	return files, nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
