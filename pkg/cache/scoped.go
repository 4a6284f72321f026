package cache

// ScopedKeyer wraps a Keyer with a prefix so several accounts can share one
// backend. The CLI scopes payload keys by a hash of the GitHub token:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "token:"+Hash(token)[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// PayloadKey generates a prefixed payload key.
func (k *ScopedKeyer) PayloadKey(login string, opts PayloadKeyOpts) string {
	return k.prefix + k.inner.PayloadKey(login, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
