// Package markdown parses Markdown text into a mutable document tree.
//
// The tree is built once by Parse and then consumed read-mostly: every
// node carries its parent, its previous/next sibling, and a previous/next
// element thread that links the whole tree in document order, so a full
// pre-order walk needs no recursion and no stack. Structural edits
// (Insert, Append, Extract, Decompose) keep all four link families
// consistent.
//
// The parser is line oriented and permissive: input is never rejected,
// and anything it cannot classify becomes a plain paragraph.
package markdown
