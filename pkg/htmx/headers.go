package htmx

// Request headers sent by the htmx client.
const (
	HeaderHXRequest    = "HX-Request"
	HeaderHXBoosted    = "HX-Boosted"
	HeaderHXCurrentURL = "HX-Current-URL"
	HeaderHXTarget     = "HX-Target"
)

// Directive attributes understood by the composer.
const (
	AttrGet     = "hx-get"
	AttrTrigger = "hx-trigger"
	AttrSelect  = "hx-select"
	AttrSwap    = "hx-swap"

	// TriggerServer is the hx-trigger token that marks a directive for
	// server-side expansion.
	TriggerServer = "server"
)
