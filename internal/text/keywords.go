package text

import "strings"

// Category is a named list of trigger phrases
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms"`
}

// KeywordTable is an immutable, ordered set of keyword categories. Matching
// walks categories in order and terms within a category in order.
type KeywordTable struct {
	categories []Category
}

// NewKeywordTable copies the given categories into a table. Terms are
// lowercased; empty terms and empty categories are dropped.
func NewKeywordTable(categories ...Category) *KeywordTable {
	t := &KeywordTable{}
	for _, c := range categories {
		var terms []string
		for _, term := range c.Terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				terms = append(terms, term)
			}
		}
		if c.Name == "" || len(terms) == 0 {
			continue
		}
		t.categories = append(t.categories, Category{Name: c.Name, Terms: terms})
	}
	return t
}

// DefaultKeywordTable returns the built-in excitement, gaming and reaction
// vocabularies
func DefaultKeywordTable() *KeywordTable {
	return NewKeywordTable(defaultCategories()...)
}

func defaultCategories() []Category {
	return []Category{
		{Name: "excitement", Terms: []string{
			"wow", "amazing", "incredible", "unbelievable", "insane", "crazy",
			"clip that", "did you see", "no way", "holy", "omg", "sick",
			"nuts", "epic", "legendary", "perfect", "beautiful", "awesome",
		}},
		{Name: "gaming", Terms: []string{
			"headshot", "ace", "clutch", "pentakill", "victory", "win",
			"kill", "elimination", "boss", "rare", "loot", "achievement",
		}},
		{Name: "reaction", Terms: []string{
			"laugh", "scream", "excited", "shocked", "surprised", "funny",
			"hilarious", "reaction", "emotional", "tears", "crying",
		}},
	}
}

// With returns a new table holding t's categories followed by extra
func (t *KeywordTable) With(extra ...Category) *KeywordTable {
	return NewKeywordTable(append(t.Categories(), extra...)...)
}

// Categories returns a copy of the table contents
func (t *KeywordTable) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Terms: append([]string(nil), c.Terms...)}
	}
	return out
}

// Match is one keyword found in a piece of text
type Match struct {
	Keyword  string
	Category string
}

// Find returns every term contained in s, compared case-insensitively, in
// table order
func (t *KeywordTable) Find(s string) []Match {
	lower := strings.ToLower(s)

	var out []Match
	for _, c := range t.categories {
		for _, term := range c.Terms {
			if strings.Contains(lower, term) {
				out = append(out, Match{Keyword: term, Category: c.Name})
			}
		}
	}
	return out
}
