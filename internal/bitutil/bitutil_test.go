package bitutil

import (
	"bytes"
	"testing"
)

// Adapted from: https://golang.org/src/crypto/cipher/xor_test.go
func TestXOR(t *testing.T) {
	for alignP := 0; alignP < 2; alignP++ {
		for alignQ := 0; alignQ < 2; alignQ++ {
			for alignD := 0; alignD < 2; alignD++ {
				p := make([]byte, 1023)[alignP:]
				q := make([]byte, 1023)[alignQ:]

				for i := range p {
					p[i] = byte(i)
				}
				for i := range q {
					q[i] = byte(len(q) - i)
				}
				dst := make([]byte, 1023+alignD)[alignD:]

				want := len(p)
				if len(q) < want {
					want = len(q)
				}
				n := XORBytes(dst, p, q)
				if n != want {
					t.Fatalf("wrong length: got %d want %d", n, want)
				}
				for i := 0; i < want; i++ {
					if dst[i] != p[i]^q[i] {
						t.Fatalf("mismatch at %d: got %x want %x", i, dst[i], p[i]^q[i])
					}
				}
			}
		}
	}
}

func TestXORShorterOperand(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{0xff, 0xff}
	dst := make([]byte, 4)
	n := XORBytes(dst, a, b)
	if n != 2 {
		t.Fatalf("expected n=2, got %d", n)
	}
	if !bytes.Equal(dst[:2], []byte{0xfe, 0xfd}) {
		t.Fatalf("unexpected result: %x", dst[:2])
	}
}
