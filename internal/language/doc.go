// Package language normalizes language hints and stream language tags.
//
// Configuration hints, ffprobe stream tags and backend-reported languages all
// pass through here so they compare as ISO 639-1 base codes. Parsing is
// delegated to golang.org/x/text/language; a small table covers the legacy
// bibliographic ISO 639-2 codes that media containers still carry.
package language
