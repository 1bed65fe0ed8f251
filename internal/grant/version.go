package grant

// Event standard constants carried by every notification.
const (
	// Standard names the notification schema.
	Standard = "FractalRegistry"

	// StandardVersion is the notification schema version.
	StandardVersion = "0"
)
