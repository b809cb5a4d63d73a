// Package normalize turns extracted show candidates into catalog records.
//
// Normalization is total: every candidate yields a record. Missing fields are
// replaced with the catalog's sentinel values, text is trimmed, titles are
// bounded in length, and the venue contributes its name and neighborhood.
package normalize
