package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/errors"
)

// Document is the uploaded export that the collections are parsed from. Each
// element of UserDefinitions is either a JSON-encoded string holding the
// definition object, or the object itself.
type Document struct {
	UserCategories  []json.RawMessage `json:"userCategories"`
	UserDefinitions []json.RawMessage `json:"userDefinitions"`
}

type rawDefinition struct {
	DefinitionID   string `json:"definitionId"`
	DefinitionName string `json:"definitionName"`
	CategoryID     string `json:"categoryId"`
	DefinitionType string `json:"definitionType"`
	DefinitionData struct {
		ElementProperties struct {
			Query  string `json:"query"`
			Script string `json:"script"`
		} `json:"elementProperties"`
	} `json:"definitionData"`
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return Parse(data)
}

// Load parses a document from r.
func Load(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a document into a Snapshot. Every definition gets a content
// entry derived from its type: sql definitions expose their query, javascript
// definitions their script, and anything else the definition itself as
// indented JSON.
func Parse(data []byte) (*Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "decoding document: %v", err)
	}

	categories := make([]Category, 0, len(doc.UserCategories))
	seenCategories := make(map[string]struct{}, len(doc.UserCategories))
	for i, raw := range doc.UserCategories {
		var c Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "category %d: %v", i, err)
		}
		if c.CategoryID == "" {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "category %d: categoryId is required", i)
		}
		if _, dup := seenCategories[c.CategoryID]; dup {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "category %d: duplicate categoryId %q", i, c.CategoryID)
		}
		seenCategories[c.CategoryID] = struct{}{}
		if c.DisplayName == "" {
			c.DisplayName = c.CategoryName
		}
		categories = append(categories, c)
	}

	definitions := make([]Definition, 0, len(doc.UserDefinitions))
	content := make(ContentMap, len(doc.UserDefinitions))
	for i, raw := range doc.UserDefinitions {
		body, err := unwrapDefinition(raw)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "definition %d: %v", i, err)
		}
		var d rawDefinition
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "definition %d: %v", i, err)
		}
		if d.DefinitionID == "" {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "definition %d: definitionId is required", i)
		}
		if _, dup := content[d.DefinitionID]; dup {
			return nil, apperrors.Newf(apperrors.ErrInvalidDocument, 400, "definition %d: duplicate definitionId %q", i, d.DefinitionID)
		}
		definitions = append(definitions, Definition{
			DefinitionID:   d.DefinitionID,
			DefinitionName: d.DefinitionName,
			CategoryID:     d.CategoryID,
			DefinitionType: d.DefinitionType,
		})
		content[d.DefinitionID] = deriveContent(d, body)
	}

	return NewSnapshot(categories, definitions, content), nil
}

// unwrapDefinition returns the JSON object for a definition element, decoding
// one level of string encoding when present.
func unwrapDefinition(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed, nil
	}
	var encoded string
	if err := json.Unmarshal(trimmed, &encoded); err != nil {
		return nil, err
	}
	return []byte(encoded), nil
}

func deriveContent(d rawDefinition, body []byte) ContentEntry {
	switch d.DefinitionType {
	case "sql":
		return ContentEntry{Code: d.DefinitionData.ElementProperties.Query, Language: "sql", Type: d.DefinitionType}
	case "javascript":
		return ContentEntry{Code: d.DefinitionData.ElementProperties.Script, Language: "javascript", Type: d.DefinitionType}
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return ContentEntry{Code: string(body), Language: "json", Type: d.DefinitionType}
		}
		return ContentEntry{Code: buf.String(), Language: "json", Type: d.DefinitionType}
	}
}
