// Copyright 2025 BT Servant
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package catalog tracks downloaded source documents. The manifest is
// keyed by MD5 content hash so that re-downloads of identical content
// are no-ops, and it resolves original URL and folder metadata for the
// extraction stage.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btservant/tbpcorpus/core"
)

// ManifestFilename is the manifest's conventional name inside a corpus
// metadata directory.
const ManifestFilename = "download-manifest.json"

// Resource describes one discovered source file with both its original
// and sanitized path forms.
type Resource struct {
	URL               string   `json:"url"`
	OriginalPath      string   `json:"original_path"`
	Filename          string   `json:"filename"`
	SanitizedFilename string   `json:"sanitized_filename"`
	Folders           []string `json:"folders"`
	SanitizedFolders  []string `json:"sanitized_folders"`
	FolderPath        string   `json:"folder_path"`
	SanitizedPath     string   `json:"sanitized_path"`
	Category          string   `json:"category,omitempty"`
	SizeBytes         int64    `json:"size_bytes,omitempty"`
	Hash              string   `json:"hash,omitempty"`
}

// Failure records a resource that could not be retrieved.
type Failure struct {
	URL         string `json:"url"`
	Error       string `json:"error"`
	Description string `json:"description,omitempty"`
}

// Stats counts download outcomes for one scrape run.
type Stats struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
	Redirected int `json:"redirected"`
}

// Manifest is the persisted catalog of downloaded sources. Hashes maps
// a sanitized relative path to its MD5 content hash; the inverted
// index (hash to path) is rebuilt on load and used for deduplication.
type Manifest struct {
	Source          string            `json:"source"`
	TotalDiscovered int               `json:"total_discovered"`
	Stats           Stats             `json:"stats"`
	Resources       []*Resource       `json:"resources"`
	Failed          []Failure         `json:"failed"`
	Hashes          map[string]string `json:"md5_hashes"`

	byHash     map[string]string    // md5 -> sanitized path
	byFilename map[string]*Resource // sanitized filename -> resource
}

// NewManifest returns an empty manifest for the given source.
func NewManifest(source string) *Manifest {
	m := &Manifest{
		Source: source,
		Hashes: make(map[string]string),
	}
	m.reindex()
	return m
}

// LoadManifest reads a manifest file. A missing file is not an error;
// an empty manifest is returned so a first run starts from nothing.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewManifest(""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if m.Hashes == nil {
		m.Hashes = make(map[string]string)
	}
	m.reindex()
	return &m, nil
}

// Save writes the manifest as indented JSON, creating the parent
// directory if needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func (m *Manifest) reindex() {
	m.byHash = make(map[string]string, len(m.Hashes))
	for path, hash := range m.Hashes {
		m.byHash[hash] = path
	}
	m.byFilename = make(map[string]*Resource, len(m.Resources))
	for _, res := range m.Resources {
		if res.SanitizedFilename != "" {
			m.byFilename[res.SanitizedFilename] = res
		}
	}
}

// Add registers a downloaded document. If content with the same hash
// is already cataloged the existing resource is returned and nothing
// changes; otherwise a new resource is appended and indexed.
func (m *Manifest) Add(doc *core.SourceDocument) (*Resource, bool) {
	if path, ok := m.byHash[doc.ContentHash]; ok {
		if res, ok := m.byFilename[filepath.Base(path)]; ok {
			return res, false
		}
		// Hash known but resource row missing; still a duplicate.
		return nil, false
	}

	res := &Resource{
		URL:               doc.OriginalURL,
		Filename:          doc.Filename,
		SanitizedFilename: SanitizePathComponent(doc.Filename),
		SanitizedPath:     doc.Path,
		Category:          doc.Category,
		SizeBytes:         doc.Size,
		Hash:              doc.ContentHash,
	}
	m.Resources = append(m.Resources, res)
	m.TotalDiscovered = len(m.Resources)

	key := doc.Path
	if key == "" {
		key = res.SanitizedFilename
	} else {
		key = key + "/" + res.SanitizedFilename
	}
	m.Hashes[key] = doc.ContentHash
	m.byHash[doc.ContentHash] = key
	m.byFilename[res.SanitizedFilename] = res
	return res, true
}

// Lookup resolves a sanitized filename to its cataloged resource.
func (m *Manifest) Lookup(sanitizedFilename string) (*Resource, bool) {
	res, ok := m.byFilename[sanitizedFilename]
	return res, ok
}

// PathForHash returns the cataloged path holding the given content
// hash, if any.
func (m *Manifest) PathForHash(hash string) (string, bool) {
	path, ok := m.byHash[hash]
	return path, ok
}
