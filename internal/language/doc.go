// Package language normalizes the language tags found on media streams.
//
// Streams label their language as ISO 639-1, either ISO 639-2 variant, an
// English name or a BCP 47 tag such as "pt-BR". Everything is reduced to one
// ISO 639-2 code so tracks from two releases can be selected by language.
package language
