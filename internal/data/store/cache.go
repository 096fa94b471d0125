package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nkodali/KBaseAPI/internal/domain/kbModel"
)

// AnswerCache memoizes full search results by exact query text and
// requested top-k. It is a latency/cost optimization only: every index
// mutation must invalidate it, since a cached answer could otherwise
// cite removed documents.
type AnswerCache interface {
	GetAnswer(ctx context.Context, query string, topK int) (kbModel.SearchResult, bool)
	SaveAnswer(ctx context.Context, query string, topK int, result kbModel.SearchResult) error
	Invalidate(ctx context.Context) error
}

// cacheKey normalizes the query so trivially different spellings of the
// same question hit the same entry. topK is part of the key: a result
// carries at most topK retrieved chunks, so answers for different k
// values are different payloads.
func cacheKey(query string, topK int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%d:%s", topK, hex.EncodeToString(sum[:]))
}
