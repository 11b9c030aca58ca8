// Package workflow runs the convert-and-fine-tune pipeline: read a workbook
// sheet or delimited file, write the training records for a run into the
// work directory, then hand the file to the job tracker.
//
// Only one run may hold the work directory at a time; a second Run fails
// with ErrRunInProgress instead of waiting.
package workflow
