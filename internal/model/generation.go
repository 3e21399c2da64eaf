package model

// MetaLink is one vendor-supplied source reference
type MetaLink struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// GenerationMeta carries the optional structured citation metadata a vendor
// may attach to a completion. The extractor consumes the variants in a fixed
// priority order: Citations, then Sources, then Links.
type GenerationMeta struct {
	Citations []MetaLink `json:"citations,omitempty"`
	Sources   []MetaLink `json:"sources,omitempty"`
	Links     []MetaLink `json:"content_links,omitempty"`
}

// Generation is the opaque output of the text-completion collaborator
type Generation struct {
	Text       string         `json:"text"`
	Meta       GenerationMeta `json:"meta"`
	Model      string         `json:"model,omitempty"`
	TokensUsed int            `json:"tokens_used,omitempty"`
}
