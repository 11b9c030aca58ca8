// Package records converts question/answer tables into chat fine-tuning
// training files.
//
// Each kept row becomes one line of JSON holding a system/user/assistant
// message triple. Rows with a null question or answer are dropped whole;
// unknown column names fail the conversion before anything is written.
package records
