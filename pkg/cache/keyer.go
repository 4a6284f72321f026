package cache

// Keyer generates cache keys. Every key starts with its namespace
// ("http", "payload", "artifact") so [KeyType] can classify it.
type Keyer interface {
	// HTTPKey keys a raw upstream response.
	HTTPKey(namespace, key string) string

	// PayloadKey keys a decoded ingestion payload for a login.
	PayloadKey(login string, opts PayloadKeyOpts) string

	// ArtifactKey keys a rendered output of a settled graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// PayloadKeyOpts holds the query options that change a payload.
type PayloadKeyOpts struct {
	First int `json:"first"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Seed   uint32  `json:"seed,omitempty"`
}

// DefaultKeyer hashes options into the key so different queries never
// collide.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// PayloadKey returns "payload:<hash>".
func (DefaultKeyer) PayloadKey(login string, opts PayloadKeyOpts) string {
	return hashKey("payload", login, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
