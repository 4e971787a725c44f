package appfs

import "embed"

// FS holds the app's non-Go assets, notably the SQL migrations.
//go:embed migrations
var FS embed.FS
