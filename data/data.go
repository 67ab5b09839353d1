// Package data holds the files embedded in the binary.
package data

import "embed"

// Templates are the default report templates.
//
//go:embed templates
var Templates embed.FS
