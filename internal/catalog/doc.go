// Package catalog implements the book catalog use cases: authors, genres,
// books with reviews, genre recommendations, uploaded documents and user
// administration.
//
// Book writes are forwarded to an Indexer so search picks them up in the
// background. A failed or dropped index request never fails the write.
package catalog
