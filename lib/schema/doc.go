// Package schema validates records against the typed column schema of a sub.
//
// A schema is an ordered list of columns, each with a type descriptor such as
// "INTEGER" or "TEXT NOT NULL". The first column is the key column and must be
// TEXT or INTEGER. Descriptors are parsed once into a Kind when the column is
// declared, validation then only dispatches on the Kind.
//
// Kinds and the values they accept:
//
//	TEXT     string
//	INTEGER  Go integer types, json.Number in integer syntax (never bool)
//	REAL     float32, float64, json.Number with a fraction or exponent
//	BOOLEAN  bool
//	other    anything
//
// A nil value fails every typed check. NOT NULL therefore only changes the outcome
// for columns of an unrecognized kind.
//
// Schemas marshal to and from {"column": "TYPE", ...} with the column order preserved,
// which is the format of a blueprint entry.
package schema
