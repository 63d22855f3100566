package mysql

import (
	"bytes"
	"crypto/sha1"
	"testing"
)

func TestScrambleNativeEmptyPasswordIsNil(t *testing.T) {
	if s := scrambleNative([]byte("01234567890123456789"), ""); s != nil {
		t.Fatalf("scrambleNative(empty password) = %v, want nil", s)
	}
}

func TestScrambleNativeMatchesManualComputation(t *testing.T) {
	nonce := []byte("01234567890123456789")
	password := "s3cr3t"

	stage1 := sha1.Sum([]byte(password))
	stage2 := sha1.Sum(stage1[:])
	h := sha1.New()
	h.Write(nonce)
	h.Write(stage2[:])
	want := h.Sum(nil)
	for i := range want {
		want[i] ^= stage1[i]
	}

	got := scrambleNative(nonce, password)
	if !bytes.Equal(got, want) {
		t.Fatalf("scrambleNative = %x, want %x", got, want)
	}
}

func TestScrambleNativeIsDeterministic(t *testing.T) {
	nonce := []byte("01234567890123456789")
	a := scrambleNative(nonce, "hunter2")
	b := scrambleNative(nonce, "hunter2")
	if !bytes.Equal(a, b) {
		t.Fatal("scrambleNative is not deterministic for the same nonce/password")
	}
	c := scrambleNative(nonce, "different")
	if bytes.Equal(a, c) {
		t.Fatal("scrambleNative produced the same scramble for different passwords")
	}
}

func TestMakeAuthResponseDispatchesByPlugin(t *testing.T) {
	nonce := []byte("01234567890123456789")
	native, err := makeAuthResponse(authNativePassword, nonce, "pw")
	if err != nil {
		t.Fatalf("makeAuthResponse(native): %v", err)
	}
	sha2, err := makeAuthResponse(authCachingSha2, nonce, "pw")
	if err != nil {
		t.Fatalf("makeAuthResponse(caching_sha2): %v", err)
	}
	if bytes.Equal(native, sha2) {
		t.Fatal("native and caching_sha2 scrambles should differ in construction")
	}
	if len(native) != sha1.Size {
		t.Fatalf("native scramble length = %d, want %d", len(native), sha1.Size)
	}

	if _, err := makeAuthResponse("unknown_plugin", nonce, "pw"); err == nil {
		t.Fatal("makeAuthResponse accepted an unknown plugin")
	}
}

func TestXorPasswordCyclesNonce(t *testing.T) {
	password := []byte("abc")
	nonce := []byte("xy")
	got := xorPassword(password, nonce)
	if len(got) != len(password)+1 {
		t.Fatalf("xorPassword length = %d, want %d", len(got), len(password)+1)
	}
	want := []byte{'a' ^ 'x', 'b' ^ 'y', 'c' ^ 'x', 0 ^ 'y'}
	if !bytes.Equal(got, want) {
		t.Fatalf("xorPassword = %v, want %v", got, want)
	}
}
