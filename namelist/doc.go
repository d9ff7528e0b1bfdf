// Package namelist parses, models, edits and formats Fortran namelist files.
//
// A file holds zero or more namelist groups. Each group opens with &NAME,
// holds one entry per line, and closes with '/' (or &END):
//
//	&physics
//	  dt     =   0.5 ! seconds
//	  nsteps =   100
//	  method = 'rk4'
//	/
//
// # Values
//
// Each value is classified into a typed [Value]: logical, string, integer,
// real, complex, or a homogeneous array of one of those. A list whose pieces
// do not share a kind becomes a mixed array of literals, and numbers that do
// not fit the numeric types become literals, so every value that parses
// also renders back to text that parses identically.
//
// # Entries
//
// An [Entry] is a blank line, a comment-only line, or an assignment with an
// optional trailing comment. Code on a line without '=' continues the value
// of the preceding assignment.
//
// # Alignment
//
// Rendering lines up the '=' and comment columns of every assignment in a
// [File]. The column widths are the longest key and value across the whole
// file, and the layout is controlled by an [Alignment]. Widths are
// re-derived on every render, so edits never leave the layout stale.
//
// # Duplicates
//
// Neither namelist names nor keys need to be unique. Lookups compare names
// with [SameName]; delete and pop operations take a match index, where
// [All] selects every match and an index past the last match is clamped to
// it. Outcomes are reported by a [Result] rather than an error.
//
// # Logging
//
// Warnings about clamped indices, missing names, ignored text and
// overwritten files are sent to the logger given with [WithLogger]. Without
// one, the package is silent.
package namelist
