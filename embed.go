package folio

import "embed"

// EmbeddedAssets contains the page scripts shipped with the engine:
// search.js and theme.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
