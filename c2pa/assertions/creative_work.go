package assertions

// LabelCreativeWork is the label of the schema.org CreativeWork assertion.
const LabelCreativeWork = "stds.schema-org.CreativeWork"

// SchemaOrgContext is the default JSON-LD context of schema.org objects.
const SchemaOrgContext = "http://schema.org/"

// Canonical identity URIs of author statements.
const (
	InstagramURI = "https://instagram.com"
	PGPURI       = "https://keys.openpgp.org"
)

// Person is a schema.org Person used as author.
type Person struct {
	Context    string `json:"@context"`
	Type       string `json:"@type"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	ID         string `json:"@id"`
}

// CreativeWork is a schema.org CreativeWork with authors or a URL.
type CreativeWork struct {
	Context string   `json:"@context"`
	Type    string   `json:"@type"`
	Author  []Person `json:"author,omitempty"`
	URL     string   `json:"url,omitempty"`
}

// NewAuthorWork creates a creative work with a single author whose name,
// identifier and @id are set.
func NewAuthorWork(name, identifier, id string) *CreativeWork {
	return &CreativeWork{
		Context: SchemaOrgContext,
		Type:    "CreativeWork",
		Author: []Person{{
			Context:    SchemaOrgContext,
			Type:       "Person",
			Name:       name,
			Identifier: identifier,
			ID:         id,
		}},
	}
}

// NewWebsiteWork creates a creative work that only carries url.
func NewWebsiteWork(url string) *CreativeWork {
	return &CreativeWork{Context: SchemaOrgContext, Type: "CreativeWork", URL: url}
}

func (*CreativeWork) Label() string { return LabelCreativeWork }

func (w *CreativeWork) Assertion() (*Assertion, error) {
	return EncodeJSON(LabelCreativeWork, w)
}
