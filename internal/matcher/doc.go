// Package matcher joins user-supplied provider names to the ODPC register.
//
// Names on both sides are trimmed and case-folded with the same CasePolicy,
// then every user row is left-joined to the first register row whose folded
// NAME is identical. The result is projected onto a fixed list of output
// columns, leaving out any column the register does not provide.
package matcher
