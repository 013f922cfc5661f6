package language

import (
	"path/filepath"
	"strings"
)

// Unknown is reported for files whose extension is not recognised.
const Unknown = "unknown"

var extensions = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".go":    "go",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".rs":    "rust",
	".swift": "swift",
	".kt":    "kotlin",
	".sql":   "sql",
	".tf":    "terraform",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
}

// Detect returns the language tag for a file path based on its extension.
func Detect(path string) string {
	if lang, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return Unknown
}
