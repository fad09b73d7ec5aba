// Package procmacro installs the external macro server into the compiler
// driver as ordinary plugins.
//
// A Session is the typed context every adapter needs: the server status,
// the scope resolver and the expansion caches. Adapters are unexported and
// created only by Session.BuildSuites, so an adapter is always paired with
// the session it was built for.
//
// Expansion never fails from the driver's point of view. While the server
// is starting, after it crashed, or when a call errors out, adapters return
// an empty result without diagnostics and the event is only traced.
package procmacro
