package engine

import (
	"fmt"
)

// Kind tags which collection a result came from.
type Kind int

const (
	KindCategory Kind = iota + 1
	KindDefinition
	KindContent
)

var kindNames = map[Kind]string{
	KindCategory:   "category",
	KindDefinition: "definition",
	KindContent:    "content",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Target is the kind reported to the host when a result is opened. A content
// match opens its definition, so the host cannot tell it apart from a name
// match on the same definition.
func (k Kind) Target() Kind {
	if k == KindContent {
		return KindDefinition
	}
	return k
}

func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown result kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown result kind %q", name)
}

// MatchKind records whether a result matched on a name field or inside content.
type MatchKind string

const (
	MatchName    MatchKind = "name"
	MatchContent MatchKind = "content"
)

// Status distinguishes "type to search" from "nothing matched".
type Status string

const (
	StatusPrompt    Status = "prompt"
	StatusNoMatches Status = "no_matches"
	StatusMatches   Status = "matches"
)

type Result struct {
	Kind        Kind      `json:"kind"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName,omitempty"`
	CategoryID  string    `json:"categoryId,omitempty"`
	MatchKind   MatchKind `json:"matchKind"`
	Snippet     string    `json:"snippet,omitempty"`
}

type Response struct {
	Query   string   `json:"query"`
	Status  Status   `json:"status"`
	Results []Result `json:"results"`
}

// Counts returns the number of results per kind.
func (r Response) Counts() map[string]int {
	counts := map[string]int{
		KindCategory.String():   0,
		KindDefinition.String(): 0,
		KindContent.String():    0,
	}
	for _, res := range r.Results {
		counts[res.Kind.String()]++
	}
	return counts
}
