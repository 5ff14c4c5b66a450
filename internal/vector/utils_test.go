package vector

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.5, 3.25, 0, -1e-7, 42.0}

	encoded := EncodeFloat32s(original)
	if len(encoded) != len(original)*4 {
		t.Fatalf("expected %d bytes, got %d", len(original)*4, len(encoded))
	}

	decoded, err := DecodeFloat32s(encoded)
	if err != nil {
		t.Fatalf("DecodeFloat32s failed: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("expected %d values, got %d", len(original), len(decoded))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("value %d: got %v, want %v", i, decoded[i], original[i])
		}
	}
}

func TestDecodeRejectsTruncatedBlob(t *testing.T) {
	if _, err := DecodeFloat32s([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for blob with length not a multiple of 4")
	}
}

func TestDecodeEmptyBlob(t *testing.T) {
	decoded, err := DecodeFloat32s(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected empty vector, got %v", decoded)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0, false},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0, false},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0, false},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0, true},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CosineSimilarity(tc.a, tc.b)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	a, err := e.CreateEmbedding("the same text")
	if err != nil {
		t.Fatalf("CreateEmbedding failed: %v", err)
	}
	b, err := e.CreateEmbedding("the same text")
	if err != nil {
		t.Fatalf("CreateEmbedding failed: %v", err)
	}

	if len(a) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mock embedder is not deterministic at dimension %d", i)
		}
	}

	c, err := e.CreateEmbedding("a different text")
	if err != nil {
		t.Fatalf("CreateEmbedding failed: %v", err)
	}
	sim, err := CosineSimilarity(a, c)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if sim > 0.999 {
		t.Errorf("different texts produced near-identical embeddings (similarity %v)", sim)
	}
}

func TestMockEmbedderUnitLength(t *testing.T) {
	e := NewMockEmbedder(128)

	embedding, err := e.CreateEmbedding("normalize me")
	if err != nil {
		t.Fatalf("CreateEmbedding failed: %v", err)
	}

	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sumSquares)-1.0) > 1e-4 {
		t.Errorf("expected unit-length vector, got magnitude %v", math.Sqrt(sumSquares))
	}
}
