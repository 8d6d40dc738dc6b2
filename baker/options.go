package baker

// Exposure used for tonemapped output when the caller leaves it unset.
const defaultExposure float32 = 40.0

// A Progress event emitted while a table bakes.
type Progress struct {
	// Baked and total row counts for the running pass.
	Rows  uint32
	Total uint32
}

type Options struct {
	// Exposure for tonemapping the preview window.
	Exposure float32

	// Integer upscale factor for the preview window.
	DisplayScale uint32

	// Backend selection.
	BlackListedBackends []string
	ForcePrimaryBackend string

	// An optional channel that receives progress events as table rows
	// complete. Events are dropped if the receiver falls behind.
	Progress chan<- Progress
}

// Fill in defaults for unset option fields.
func (o Options) withDefaults() Options {
	if o.Exposure == 0 {
		o.Exposure = defaultExposure
	}
	if o.DisplayScale == 0 {
		o.DisplayScale = 1
	}
	return o
}
