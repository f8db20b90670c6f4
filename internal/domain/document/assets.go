package document

import (
	"path"
	"strconv"
)

// Asset names inside a document's directory.
const (
	SourceName    = "source.pdf"
	ThumbnailName = "thumbnail.png"
)

// PageImageName returns the asset name of a rendered page.
func PageImageName(page int) string { return "page_" + strconv.Itoa(page) + ".png" }

// AssetKey joins a document ID and an asset name into a blob key.
func AssetKey(documentID, name string) string { return path.Join(documentID, name) }

// SourceKey returns the blob key of the uploaded PDF.
func SourceKey(documentID string) string { return AssetKey(documentID, SourceName) }
