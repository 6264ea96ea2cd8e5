// Package sentiment scores the polarity of headlines and rewrites.
//
// Lexicon is the built-in rule scorer and Default returns its shared instance.
// ModelScorer puts a pretrained classifier in front of it. AlwaysSimilar stands
// in for semantic matching.
package sentiment
