package api

// API limits and constants.
const (
	// MaxUploadSize caps request bodies. Scrap creation carries two
	// base64-encoded photos, so this leaves roughly 10 MB per photo
	// after encoding overhead.
	MaxUploadSize = 32 << 20
)

// Cache-Control header values.
const (
	CacheOneDay = "public, max-age=86400"
)
