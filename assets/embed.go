// Package assets holds embedded fixtures shipped with the binary.
package assets

import _ "embed"

// FallbackSchedule is a minimal synthetic lake-schedule page served by the
// fetcher's explicit fallback mode when every fetch attempt has failed. Day
// headers are {{DAYn}} placeholders (n counting from the week's Monday); the
// fetcher stamps them with the dates of the week it was asked for, so
// fallback sessions land inside the window being fetched.
//
//go:embed fallback.html
var FallbackSchedule []byte
