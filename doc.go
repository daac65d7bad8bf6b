// Package pardon implements the schema engine at the core of Pardon: an HTTP
// request templating and matching engine. Given a partial request plus a bag
// of named values, the engine merges the request against a chosen template,
// renders a complete request, and matches responses to extract further
// values. This package implements only the schema engine itself (pattern
// parsing, scope resolution, expression evaluation, schema primitives, and
// the merge/render/match driver); collection loading, transport, and the CLI
// live in sibling packages.
package pardon
