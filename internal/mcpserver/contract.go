package mcpserver

// ConventionsURI addresses the conventions resource.
const ConventionsURI = "dynwidget://conventions"

// Conventions describes how notes must be named and annotated so the widget
// can relate them. LLM consumers read it before editing notes.
const Conventions = `# Dynamic Widget Conventions

The sidebar classifies the active note and lists related notes grouped by folder.

## Areas

` + "```" + `markdown
---
areas:                 # list of areas, wiki-links allowed
  - "[[Health]]"
  - Sport
---
` + "```" + `

- ` + "`" + `areas` + "`" + ` (list or single string) takes precedence over ` + "`" + `area` + "`" + ` (single string).
- ` + "`" + `[[` + "`" + ` and ` + "`" + `]]` + "`" + ` are ignored when comparing, so ` + "`" + `"[[Health]]"` + "`" + ` and ` + "`" + `Health` + "`" + ` match.
- Values that are neither strings nor lists of strings are ignored.

## Day notes

A note named ` + "`" + `YYYY-MM-DD.md` + "`" + ` (a real calendar date) without areas is a day
note. Its sidebar lists every note created and modified on that day, newest first.

## Buckets

Notes are grouped into configured folder buckets by literal path prefix, in
configured order. A note lands in the first bucket whose prefix matches; notes
under no bucket are not listed. Call ` + "`" + `list_buckets` + "`" + ` to see the buckets.

## Titles

Entries show the frontmatter ` + "`" + `title` + "`" + ` when it is a non-empty string, otherwise
the file name without extension.
`
