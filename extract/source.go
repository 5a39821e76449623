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


package extract

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"code.sajari.com/docconv"
)

// PagesSuffix marks a pre-decoded page source: a JSON file holding
// `{"pages": ["...", ...]}` produced by an external decoder.
const PagesSuffix = ".pages.json"

// ReadPages loads a source file as ordered raw page texts. PDFs go
// through docconv, whose converter separates pages with form feeds;
// .pages.json files are read as-is.
func ReadPages(path string) ([]string, error) {
	switch {
	case strings.HasSuffix(path, PagesSuffix):
		return readPagesJSON(path)
	case strings.HasSuffix(strings.ToLower(path), ".pdf"):
		return readPDFPages(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
}

func readPagesJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page source: %w", err)
	}
	var doc struct {
		Pages []string `json:"pages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse page source %s: %w", path, err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, path)
	}
	return doc.Pages, nil
}

func readPDFPages(path string) ([]string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	if res.Body == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, path)
	}
	return strings.Split(res.Body, "\f"), nil
}

// SourceHash computes the MD5 content hash of a file, the identity the
// catalog and chunk ids are keyed on.
func SourceHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open source for hashing: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash source: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
