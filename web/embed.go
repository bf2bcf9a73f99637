package web

import "embed"

// Templates 包含页面模板，随二进制一起分发。
//
//go:embed template/*.html
var Templates embed.FS
