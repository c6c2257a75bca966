package domain

// ProductRecord represents the scraped content of a single retail product page.
// It is produced by the scraping collaborator and treated as an immutable
// snapshot for the duration of one analysis run. Absent fields are empty.
type ProductRecord struct {
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets,omitempty"`
	Ingredients string   `json:"ingredients,omitempty"`
	Description string   `json:"description,omitempty"`
	Reviews     []string `json:"reviews,omitempty"`
}

// HasIngredients reports whether the record carries an ingredient statement.
// Ingredient text drives allergen detection, so the extractor prioritizes it.
func (r *ProductRecord) HasIngredients() bool {
	return r != nil && r.Ingredients != ""
}
