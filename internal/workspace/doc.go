// Package workspace manages the transient files a render run writes next to
// its sources.
//
// Markup sources are converted to an intermediate HTML template in the source
// directory so that the template engine can resolve it by name (and so that
// relative includes behave as for hand-written templates). A Guard creates
// those files exclusively and guarantees their removal on every path, so a
// failed run never leaves generated HTML beside the markup it came from.
package workspace
