// Package supervisor owns the macro server process.
//
// It starts the server, handshakes, and publishes the live client through a
// status.Cell. When the connection dies the server is restarted while the
// restart budget lasts; after that the cell is set to Crashed for good and
// every later expansion degrades to an empty result.
package supervisor
