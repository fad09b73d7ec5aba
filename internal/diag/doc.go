// Package diag is the diagnostic model plugins hand back to the compiler.
//
// A Diagnostic keeps the severity the macro chose. Its Code only says where
// the finding came from: the macro itself (PMC range) or the bridge (BRG
// range). Bag sorts and deduplicates for printing; the package does no IO.
package diag
