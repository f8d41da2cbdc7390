// Package songs holds the normalized song model shared across the career
// builder, plus the composite difficulty scorer that orders both the library
// view and the tiering pool.
package songs
