// Package artifact writes an archived artifact to an output directory and
// verifies directories written earlier.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/archivist/internal/adapters/manifest"
	"github.com/bnema/archivist/internal/adapters/resourcespb"
	"github.com/bnema/archivist/internal/domain"
	"github.com/bnema/archivist/internal/ports"
)

const (
	ManifestFile      = "AndroidManifest.xml"
	ResourceTableFile = "resources.pb"
	ClassesDexFile    = "dex/classes.dex"
	DescriptorFile    = "artifact.cbor"

	outputDirMode  = 0o755
	outputFileMode = 0o644
	tempFilePrefix = ".archivist-"
)

var ErrDigestMismatch = errors.New("artifact file digest mismatch")

// StubSource reads the code stub file a TempDirectory handed out.
type StubSource interface {
	ReadFile(path string) ([]byte, error)
}

type osStubSource struct{}

func (osStubSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

type Writer struct {
	root   string
	stubs  StubSource
	logger *slog.Logger
}

var _ ports.ArtifactWriter = (*Writer)(nil)

// NewWriter writes into root. A nil stubs reads the code stub from the OS
// filesystem.
func NewWriter(root string, stubs StubSource, logger *slog.Logger) *Writer {
	if stubs == nil {
		stubs = osStubSource{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{root: filepath.Clean(root), stubs: stubs, logger: logger}
}

func (w *Writer) Root() string {
	return w.root
}

// Write lays the artifact out under the writer's root. Every file is replaced
// atomically; the descriptor is written last so its presence marks a
// complete directory.
func (w *Writer) Write(ctx context.Context, archived domain.ArchivedArtifact) (ports.WrittenArtifact, error) {
	if err := ctx.Err(); err != nil {
		return ports.WrittenArtifact{}, err
	}

	var manifestXML bytes.Buffer
	if err := manifest.Encode(&manifestXML, archived.Manifest); err != nil {
		return ports.WrittenArtifact{}, err
	}
	stub, err := w.stubs.ReadFile(archived.CodeStubPath)
	if err != nil {
		return ports.WrittenArtifact{}, fmt.Errorf("read code stub: %w", err)
	}

	contents := []struct {
		name string
		data []byte
	}{
		{name: ManifestFile, data: manifestXML.Bytes()},
		{name: ResourceTableFile, data: resourcespb.Encode(archived.ResourceTable)},
		{name: ClassesDexFile, data: stub},
	}

	descriptor := Descriptor{
		Version:          descriptorVersion,
		PackageName:      archived.PackageName,
		SourceModule:     archived.SourceModule,
		StorePackageName: archived.StorePackageName,
		InjectedResource: uint32(archived.InjectedResource),
		EntryCount:       archived.ResourceTable.EntryCount(),
	}
	written := ports.WrittenArtifact{Dir: w.root}

	for _, content := range contents {
		if err := ctx.Err(); err != nil {
			return ports.WrittenArtifact{}, err
		}
		file, err := w.writeFile(content.name, content.data)
		if err != nil {
			return ports.WrittenArtifact{}, err
		}
		descriptor.Files = append(descriptor.Files, file)
		written.Files = append(written.Files, writtenFile(file))
	}

	encoded, err := encodeDescriptor(descriptor)
	if err != nil {
		return ports.WrittenArtifact{}, err
	}
	file, err := w.writeFile(DescriptorFile, encoded)
	if err != nil {
		return ports.WrittenArtifact{}, err
	}
	written.Files = append(written.Files, writtenFile(file))

	w.logger.Debug("artifact written", "path", w.root, "files", len(written.Files))
	return written, nil
}

func writtenFile(file FileDigest) ports.WrittenFile {
	return ports.WrittenFile{Path: file.Path, Size: file.Size, Digest: file.Hex()}
}

func (w *Writer) writeFile(name string, data []byte) (FileDigest, error) {
	target, err := w.pathFor(name)
	if err != nil {
		return FileDigest{}, err
	}
	if err := writeAtomic(target, data); err != nil {
		return FileDigest{}, err
	}
	return FileDigest{Path: name, Size: int64(len(data)), BLAKE3: digest(data)}, nil
}

func (w *Writer) pathFor(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("artifact file name is empty")
	}

	cleaned := filepath.Clean(filepath.FromSlash(trimmed))
	escapes := cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator))
	if filepath.IsAbs(cleaned) || escapes || cleaned == "." {
		return "", fmt.Errorf("invalid artifact file name %q", name)
	}

	return filepath.Join(w.root, cleaned), nil
}

func writeAtomic(target string, data []byte) (err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, outputDirMode); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePrefix+filepath.Base(target)+"-*")
	if err != nil {
		return fmt.Errorf("create temp artifact file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if !cleanup {
			return
		}
		if removeErr := os.Remove(tempName); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove temp artifact file: %w", removeErr))
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp artifact file: %w", err)
	}

	if err := tempFile.Chmod(outputFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp artifact file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp artifact file: %w", err)
	}

	if err := os.Rename(tempName, target); err != nil {
		return fmt.Errorf("replace artifact file %s: %w", filepath.Base(target), err)
	}

	cleanup = false
	return nil
}

// Verify rereads the descriptor in dir and checks every listed file against
// its recorded size and digest.
func Verify(dir string) (Descriptor, error) {
	descriptor, err := ReadDescriptor(filepath.Join(dir, DescriptorFile))
	if err != nil {
		return Descriptor{}, err
	}

	w := NewWriter(dir, nil, nil)
	for _, file := range descriptor.Files {
		target, err := w.pathFor(file.Path)
		if err != nil {
			return Descriptor{}, err
		}
		data, err := os.ReadFile(target)
		if err != nil {
			return Descriptor{}, fmt.Errorf("read artifact file: %w", err)
		}
		if int64(len(data)) != file.Size || !bytes.Equal(digest(data), file.BLAKE3) {
			return Descriptor{}, fmt.Errorf("%w: %s", ErrDigestMismatch, file.Path)
		}
	}
	return descriptor, nil
}
