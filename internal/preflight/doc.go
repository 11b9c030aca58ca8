// Package preflight provides readiness checks for the paths and service
// credentials gendonk depends on.
//
// The CLI "gendonk status" command prints every Result; "gendonk finetune"
// runs the same checks first and refuses to upload when one fails.
package preflight
