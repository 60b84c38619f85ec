package loam

// ViewMetadata is the front matter of a view document.
// JSON and YAML documents carry the same keys at the top level.
type ViewMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title,omitempty" mapstructure:"title"`

	// Root is the tree document (see package dsl). When absent, the document
	// body is rendered as an article.
	Root any `json:"root,omitempty" mapstructure:"root"`

	// Class is applied to the generated article of body-only documents.
	Class string `json:"class,omitempty" mapstructure:"class"`
}
