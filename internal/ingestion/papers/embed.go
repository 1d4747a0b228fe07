package papers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
)

const (
	embedBatchSize   = 64
	embedConcurrency = 4
)

// EmbedText is the claim followed by whichever of evidence, results and
// intervention are present.
func EmbedText(in ExtractedInsight) string {
	parts := []string{in.Claim}
	if in.Evidence != nil {
		parts = append(parts, "Evidence: "+*in.Evidence)
	}
	if in.QuantitativeResult != nil {
		parts = append(parts, "Results: "+*in.QuantitativeResult)
	}
	if in.Intervention != nil {
		parts = append(parts, "Intervention: "+*in.Intervention)
	}
	return strings.Join(parts, " ")
}

// EmbedAll embeds texts in batches, a few batches at a time, keeping input order.
func EmbedAll(ctx context.Context, embedder llm.Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	if embedder == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			vecs, err := embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embed batch %d-%d: got %d vectors", start, end, len(vecs))
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
