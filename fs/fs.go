// Package appfs exposes the application's embedded file assets.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
