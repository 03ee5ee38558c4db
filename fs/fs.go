// Package appfs exposes the static files baked into the binary:
// SQL migrations and email templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
