// Package mock provides a test double for ai.Embedder.
//
// MockEmbedder runs without any embedding service and returns deterministic
// vectors derived from an FNV hash of the text. Behaviour can be replaced per
// test through the EmbedTextFunc and EmbedTextsFunc fields, and every call is
// recorded for assertions.
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service down")
//	}
//	count := embedder.CallCount()
package mock
