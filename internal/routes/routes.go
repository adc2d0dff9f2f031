// Package routes defines HTTP route constants for the application.
package routes

const (
	RobotsPath = "/robots.txt"
	HealthPath = "/healthz"

	// Draft API. {form} is the form type tag, {entity} the entity id or "new".
	APIDraft        = "/api/drafts/{form}/{entity}"
	APIDraftDismiss = "/api/drafts/{form}/{entity}/dismiss"
	APIDraftState   = "/api/drafts/{form}/{entity}/state"

	// Submission API (idempotency-key demo surface for the portal).
	APISubmissions = "/api/submissions/{form}"
)
