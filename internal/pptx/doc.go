// Package pptx extracts the text of PowerPoint .pptx decks and renders it
// as a Markdown document: keyword tags first, then each slide's title,
// text, tables and optionally speaker notes in reading order.
package pptx
