// Package models defines core data structures for functions, queries, and search results.
package models

import (
	"fmt"
	"time"
)

// Function is a single function extracted from the analyzed codebase.
type Function struct {
	ID        string                 `json:"id" db:"id"`
	Package   string                 `json:"package" db:"package"`
	Name      string                 `json:"name" db:"name"`
	Signature string                 `json:"signature" db:"signature"`
	Doc       string                 `json:"doc,omitempty" db:"doc"`
	File      string                 `json:"file" db:"file"`
	StartLine int                    `json:"start_line" db:"start_line"`
	Body      string                 `json:"body,omitempty" db:"body"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	Embedding []float32              `json:"-" db:"-"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// SemanticID returns the stable key for the function, independent of the
// storage row id: package-qualified name plus signature. Functions keep the
// same semantic id across re-indexes as long as their declaration is unchanged.
func (f *Function) SemanticID() string {
	return fmt.Sprintf("%s.%s%s", f.Package, f.Name, f.Signature)
}

// EmbeddingText returns the text handed to the embedding service: the
// declaration plus doc comment plus body, which together capture what the
// function does.
func (f *Function) EmbeddingText() string {
	text := f.Signature
	if f.Doc != "" {
		text = f.Doc + "\n" + text
	}
	if f.Body != "" {
		text = text + "\n" + f.Body
	}
	return text
}
