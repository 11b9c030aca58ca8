// Package finetune drives a fine-tuning job from training-file upload to a
// terminal status.
//
// Tracker polls the service at a fixed interval, reports status changes and
// job events through an optional Progress callback, and saves the produced
// model to the checkpoint slot on success. Cancelling the context passed to
// Track or Run sends a cancel request for the job in flight; there is no
// process-wide job handle.
package finetune
