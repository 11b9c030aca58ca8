// Package dataset reads question/answer spreadsheets into a column/row model.
//
// Workbooks (.xlsx) are first transcoded sheet by sheet into CSV, and CSV is
// the single parsing path into Table. Null detection mirrors what operators
// expect from their spreadsheet tooling: empty cells and the usual NA
// spellings are absent values rather than text.
package dataset
