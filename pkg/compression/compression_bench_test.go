package compression

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"
)

func generateCSVData(size int) []byte {
	r := rand.New(rand.NewSource(1))
	var buf bytes.Buffer
	buf.WriteString("id,name,email,age,score,active\n")
	for i := 0; buf.Len() < size; i++ {
		fmt.Fprintf(&buf, "%d,User %d,user%d@example.com,%d,%.2f,%t\n",
			i, i, i, r.Intn(80)+20, r.Float64()*100, r.Intn(2) == 1)
	}
	return buf.Bytes()
}

var benchAlgorithms = []Algorithm{Gzip, Snappy, LZ4, Zstd, S2}

func BenchmarkCompress(b *testing.B) {
	data := generateCSVData(1 << 20)
	for _, alg := range benchAlgorithms {
		b.Run(string(alg), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				w, err := NewWriter(io.Discard, alg, Default)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := w.Write(data); err != nil {
					b.Fatal(err)
				}
				if err := w.Close(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecompress(b *testing.B) {
	data := generateCSVData(1 << 20)
	for _, alg := range benchAlgorithms {
		var compressed bytes.Buffer
		w, err := NewWriter(&compressed, alg, Default)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = w.Write(data)
		_ = w.Close()

		b.Run(string(alg), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportMetric(float64(compressed.Len())/float64(len(data)), "ratio")
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r, err := NewReader(bytes.NewReader(compressed.Bytes()), alg)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := io.Copy(io.Discard, r); err != nil {
					b.Fatal(err)
				}
				_ = r.Close()
			}
		})
	}
}
