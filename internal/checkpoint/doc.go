// Package checkpoint resolves which fine-tuned model the chat front-end
// should talk to.
//
// Two sources exist: the service's job listing, from which Latest picks the
// newest succeeded job, and a single-slot file that the tracker overwrites
// whenever a job succeeds. Source combines them, preferring the slot and
// falling back to (and refreshing from) the listing.
package checkpoint
