// Package deploy runs the edit workflow against a config store: locate the
// file, insert the location block, back up the original, write the result,
// and let the host validate and reload it.
//
// A failed validation puts the original bytes back before returning, so the
// remote is left either fully updated or unchanged.
package deploy
