package cache

// Keyer derives cache keys for the pipeline stages.
//
// Keys are content addressed: a layout key hashes the source document
// together with every option that changes coordinates, and an artifact key
// hashes the layout together with every drawing option.
type Keyer interface {
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the options recorded in a computed layout.
type LayoutKeyOpts struct {
	Step     int     `json:"step"`
	Distance float64 `json:"distance"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Margin   float64 `json:"margin"`
	MinSpan  float64 `json:"min_span"`
	MinDepth float64 `json:"min_depth"`
	Style    string  `json:"style"`
	Font     string  `json:"font"`
	Scale    float64 `json:"scale"`
	Class    string  `json:"class"`
}

// ArtifactKeyOpts holds the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Background string  `json:"background"`
	Class      string  `json:"class"`
	PNGScale   float64 `json:"png_scale"`
	Detailed   bool    `json:"detailed"`
	Free       bool    `json:"free"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a key for layout caching.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
