// Package docread converts documents to Markdown text for the deck
// pipeline. A Registry maps file extensions to format readers; input
// formats are resolved from an explicit hint, the file name, or magic
// bytes, in that order. Registration is last-in-first-out, so a custom
// reader registered later shadows a built-in one for the extensions
// they share.
package docread
