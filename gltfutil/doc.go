package gltfutil

import (
	"fmt"
	"os"

	"github.com/qmuntal/gltf"
)

var glbMagic = []byte("glTF")

// LoadGLB reads a binary glTF container. Text .gltf files are rejected.
func LoadGLB(path string) (*gltf.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var magic [4]byte
	_, err = f.Read(magic[:])
	f.Close()
	if err != nil || string(magic[:]) != string(glbMagic) {
		return nil, fmt.Errorf("%s: not a binary glTF container", path)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// SaveGLB writes the document as a binary glTF container.
func SaveGLB(doc *gltf.Document, path string) error {
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
