// Package normalisers extracts text from raw documents.
//
// Each supported content kind has exactly one extraction function, held by
// the plaintext and markdown subpackages. Dispatcher selects between them
// with a switch on domain.ContentKind.
package normalisers
