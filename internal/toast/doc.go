// Package toast is the producer-facing API for transient notifications.
//
// A Notifier turns call sites like Success("Saved") into one canonical
// Message and publishes it on Topic. Producers never hold a reference to the
// component that renders toasts; the renderer subscribes to Topic on the same
// bus.
//
// # Wire values
//
// The public verb Error publishes type "danger", not "error". The other verbs
// publish their own name. The mapping is fixed (see TypeFor) because
// renderers key their styling on these values.
//
// # Options
//
// Options is passed through untouched. Its fields are interpreted by the
// renderer only; unknown keys in loosely typed input are ignored.
package toast
