package badgerdb

import "fmt"

const (
	userPrefix        = "user:"
	userByEmailPrefix = "idx:users:email:" // For login lookups

	bookPrefix        = "book:"
	bookBySeqPrefix   = "idx:books:seq:"   // Insertion order
	bookByOwnerPrefix = "idx:books:owner:" // owner + ":" + seq

	reviewPrefix       = "review:"
	reviewBySeqPrefix  = "idx:reviews:seq:"  // Insertion order
	reviewByBookPrefix = "idx:reviews:book:" // book + ":" + seq

	bookSeqKey   = "seq:books"
	reviewSeqKey = "seq:reviews"
)

// seqSuffix renders a sequence number so that byte order matches numeric order.
func seqSuffix(seq uint64) string {
	return fmt.Sprintf("%020d", seq)
}

func userKey(id string) []byte { return []byte(userPrefix + id) }

func emailKey(normalized string) []byte { return []byte(userByEmailPrefix + normalized) }

func bookKey(id string) []byte { return []byte(bookPrefix + id) }

func bookSeqIndexKey(seq uint64) []byte { return []byte(bookBySeqPrefix + seqSuffix(seq)) }

func ownerIndexPrefix(ownerID string) []byte { return []byte(bookByOwnerPrefix + ownerID + ":") }

func ownerIndexKey(ownerID string, seq uint64) []byte {
	return append(ownerIndexPrefix(ownerID), seqSuffix(seq)...)
}

func reviewKey(id string) []byte { return []byte(reviewPrefix + id) }

func reviewSeqIndexKey(seq uint64) []byte { return []byte(reviewBySeqPrefix + seqSuffix(seq)) }

func bookReviewsPrefix(bookID string) []byte { return []byte(reviewByBookPrefix + bookID + ":") }

func bookReviewKey(bookID string, seq uint64) []byte {
	return append(bookReviewsPrefix(bookID), seqSuffix(seq)...)
}
