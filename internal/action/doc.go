// Package action defines the structured action record a language model
// returns for each conversation turn, and the normalizer that turns raw model
// output into one.
//
// The normalizer is defensive. Model output is expected to be a single JSON
// object with the keys action, summary, start_time, end_time and reply, but it
// is not guaranteed to be well formed. Normalize tries, in order:
//
//  1. the whole input as a JSON object
//  2. the substring from the first '{' to the last '}'
//  3. a chat record whose reply is the original text
//
// Candidates from steps 1 and 2 are validated against a JSON schema before
// they are accepted. Normalize never returns an error and never panics.
package action
