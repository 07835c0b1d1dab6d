// Package asset provides opaque handles for binary payloads and the encoder
// that turns local files into transferable handles. A handle is constructed
// either from bytes read client-side or from a URL the platform already
// knows; once embedded in a submission payload it is owned by the backend.
// Progress decoration wraps the handle's reader so the eventual network
// transfer reports integer percentages, monotonically, with nothing emitted
// after a terminal state.
package asset
