package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the external generation service, treated as a black-box
// text completion call. Implementations must respect ctx cancellation;
// the caller bounds every call with a timeout.
type Provider interface {
	Generate(ctx context.Context, query string, contextBlocks []string) (string, error)
}

// BuildPrompt assembles the grounding prompt shared by all providers.
func BuildPrompt(query string, contextBlocks []string) string {
	return fmt.Sprintf(`Answer the question using these documents.

Context:
%s

Question: %s

Answer briefly and clearly based on the context above.`, strings.Join(contextBlocks, "\n\n"), query)
}
