// Package main hosts the gendonk CLI entrypoint and command graph.
//
// The Cobra command tree turns a spreadsheet or CSV export into a
// fine-tuning training file, drives the resulting job to completion, and
// chats with the produced model. Interrupting a running "finetune" or
// "track" command cancels the job on the service before exiting.
package main
