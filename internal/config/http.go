package config

const (
	HCType        = "Content-Type"
	HCacheControl = "Cache-Control"

	CTypeJSON = "application/json"
	CTypeHTML = "text/html"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)
