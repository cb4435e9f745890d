// Package translate maps request and response bodies between the Responses
// and Chat Completions wire schemas.
//
// The transcoders operate on untyped JSON trees (map[string]any, []any)
// rather than typed models: both schemas carry forward-compatible fields
// (unknown tool types, new content parts) that must pass through untouched,
// so only the fields being rewritten are interpreted.
package translate
