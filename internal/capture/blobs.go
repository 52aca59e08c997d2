package capture

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/scanboard/internal/storage"
)

// ImageDir is the directory under the data root holding capture blobs.
const ImageDir = "images"

// Blobs persists captured images under ImageDir.
type Blobs struct {
	store storage.Provider
}

// NewBlobs returns blob storage on top of store.
func NewBlobs(store storage.Provider) *Blobs {
	return &Blobs{store: store}
}

// Save writes img as images/<id><ext> and returns that relative path.
func (b *Blobs) Save(id string, img Image) (string, error) {
	p := path.Join(ImageDir, id+img.Ext())
	if err := b.store.Write(p, img.Data); err != nil {
		return "", fmt.Errorf("capture: save image: %w", err)
	}
	return p, nil
}

// Load reads a blob previously returned by Save.
func (b *Blobs) Load(ref string) (Image, error) {
	if !IsBlobRef(ref) {
		return Image{}, fmt.Errorf("capture: not an image blob: %s", ref)
	}
	data, err := b.store.Read(ref)
	if err != nil {
		return Image{}, err
	}
	return FromBytes(data)
}

// Delete removes the blob at ref. Data URIs and unknown refs are ignored.
func (b *Blobs) Delete(ref string) error {
	if !IsBlobRef(ref) {
		return nil
	}
	return b.store.Delete(ref)
}

// DeleteAll removes every stored image blob.
func (b *Blobs) DeleteAll() error {
	files, err := b.store.List(ImageDir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := b.store.Delete(f.Path); err != nil {
			return err
		}
	}
	return nil
}

// IsBlobRef reports whether ref names a stored image rather than inline data.
func IsBlobRef(ref string) bool {
	return strings.HasPrefix(ref, ImageDir+"/")
}
