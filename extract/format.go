package extract

import (
	"path/filepath"
	"strings"
)

// Format is the extraction strategy selected for a file.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatImage Format = "image"
	FormatEmail Format = "eml"
	FormatText  Format = "text"
)

var formatsByExt = map[string]Format{
	".pdf":  FormatPDF,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".tif":  FormatImage,
	".tiff": FormatImage,
	".bmp":  FormatImage,
	".gif":  FormatImage,
	".webp": FormatImage,
	".eml":  FormatEmail,
	".txt":  FormatText,
	".md":   FormatText,
	".rtf":  FormatText,
}

// Classify returns the format of path by its extension, case-insensitively.
// Unknown extensions are treated as text.
func Classify(path string) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatText
}
