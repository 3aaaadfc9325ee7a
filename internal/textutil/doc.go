// Package textutil provides token fingerprints and similarity measures for
// comparing normalized titles.
//
// Fingerprints are term-frequency vectors built from letter and digit runs.
// A Corpus collects document frequencies across the catalog so that common
// filler tokens weigh less than distinctive ones when fingerprints are
// compared with CosineSimilarity.
package textutil
