// Package catalog holds the browsable collections that the search engine
// indexes: categories, the user definitions filed under them, and the code or
// query text attached to each definition. A Snapshot is immutable once built
// and carries a fingerprint that identifies its contents.
package catalog

// Category groups definitions in the browse tree.
type Category struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	DisplayName  string `json:"displayName"`
}

// Label is the text shown for the category in the tree.
func (c Category) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.CategoryName
}

// Definition is a single user definition. DefinitionType is an optional tag
// such as "sql" or "javascript".
type Definition struct {
	DefinitionID   string `json:"definitionId"`
	DefinitionName string `json:"definitionName"`
	CategoryID     string `json:"categoryId"`
	DefinitionType string `json:"definitionType,omitempty"`
}

// ContentEntry is the indexable body of a definition.
type ContentEntry struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Type     string `json:"type"`
}

// ContentMap is keyed by definition id. A definition without an entry, or
// with an empty Code, has no indexable body.
type ContentMap map[string]ContentEntry

// TreeNode is one category of the browse tree with its definitions in
// document order.
type TreeNode struct {
	Category    Category     `json:"category"`
	Definitions []Definition `json:"definitions"`
}
