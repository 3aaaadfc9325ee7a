// Package normalize maps raw anime titles to a canonical comparison form.
//
// Normalize runs eight ordered stages:
//
//  1. NFKC compatibility fold and lowercase
//  2. character substitution (@ to a, flanked 0 to o, typographic quotes, dashes, ligatures)
//  3. whole-token roman numerals to arabic digits
//  4. ordinals to plain digits (2nd to 2)
//  5. season, cour and series markers collapsed to their number
//  6. release tags, stop words and synonym remaps
//  7. punctuation erasure
//  8. whitespace collapse
//
// Each stage assumes the previous ones have already run. The function is pure
// and safe to call from any goroutine.
package normalize
