package mysql

// Authentication plugin support: mysql_native_password, caching_sha2_password
// (the server default since MySQL 8), and sha256_password. Flow mirrors
// MariaDB's caching_sha2_password documentation: fast-path authentication
// against a server-side scramble cache, falling back to a "full"
// authentication that RSA-encrypts the password under the server's public
// key (or over a freshly-upgraded TLS channel, where encryption is
// unnecessary since the channel itself is already confidential).

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"

	"github.com/sqlgo/sqlgo"
)

const (
	authNativePassword   = "mysql_native_password"
	authCachingSha2      = "caching_sha2_password"
	authSha256Password   = "sha256_password"
)

// scrambleNative implements mysql_native_password:
// SHA1(password) XOR SHA1(nonce + SHA1(SHA1(password)))
func scrambleNative(nonce []byte, password string) []byte {
	if len(password) == 0 {
		return nil
	}
	h := sha1.New()
	h.Write([]byte(password))
	stage1 := h.Sum(nil)

	h.Reset()
	h.Write(stage1)
	stage2 := h.Sum(nil)

	h.Reset()
	h.Write(nonce)
	h.Write(stage2)
	scramble := h.Sum(nil)

	for i := range scramble {
		scramble[i] ^= stage1[i]
	}
	return scramble
}

// scrambleSHA256 is the analogous construction used by caching_sha2_password
// and sha256_password's "fast path" comparison:
// SHA256(password) XOR SHA256(SHA256(SHA256(password)) + nonce)
func scrambleSHA256(nonce []byte, password string) []byte {
	if len(password) == 0 {
		return nil
	}
	h := sha256.New()
	h.Write([]byte(password))
	stage1 := h.Sum(nil)

	h.Reset()
	h.Write(stage1)
	stage2 := h.Sum(nil)

	h.Reset()
	h.Write(stage2)
	h.Write(nonce)
	scramble := h.Sum(nil)

	for i := range scramble {
		scramble[i] ^= stage1[i]
	}
	return scramble
}

// makeAuthResponse computes the initial authentication response for the
// named plugin. For RSA-requiring plugins over a plaintext connection, the
// caller must still request the server's public key (see encryptPassword);
// makeAuthResponse only covers the plugins that don't need it up front.
func makeAuthResponse(plugin string, nonce []byte, password string) ([]byte, error) {
	switch plugin {
	case authNativePassword:
		return scrambleNative(nonce, password), nil
	case authCachingSha2, authSha256Password:
		return scrambleSHA256(nonce, password), nil
	default:
		return nil, &sqlgo.ProtocolError{Detail: "unsupported auth plugin: " + plugin}
	}
}

// encryptPassword RSA-OAEP(SHA1)-encrypts password XORed with nonce using
// the server's public key, as required by caching_sha2_password's "full
// authentication" path and by sha256_password whenever the channel isn't
// already TLS. pubKeyPEM is the PEM block the server sent in response to
// the client's public-key request (0x02).
func encryptPassword(password string, nonce []byte, pubKeyPEM []byte) ([]byte, error) {
	block, _ := pem.Decode(pubKeyPEM)
	if block == nil {
		return nil, &sqlgo.ProtocolError{Detail: "server public key is not valid PEM"}
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, &sqlgo.ProtocolError{Detail: "parsing server public key: " + err.Error()}
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, &sqlgo.ProtocolError{Detail: "server public key is not RSA"}
	}

	plain := xorPassword([]byte(password), nonce)
	return rsa.EncryptOAEP(sha1.New(), rand.Reader, rsaPub, plain, nil)
}

// xorPassword builds the null-terminated password XORed cyclically against
// nonce, per the caching_sha2_password / sha256_password full-auth scheme.
func xorPassword(password, nonce []byte) []byte {
	buf := make([]byte, len(password)+1)
	copy(buf, password)
	for i := range buf {
		buf[i] ^= nonce[i%len(nonce)]
	}
	return buf
}

// cachingSha2FastAuthOK and friends are the single-byte signals
// caching_sha2_password sends after AuthMoreData to report whether the fast
// path (cached scramble compare) succeeded or full authentication is
// required.
const (
	cachingSha2FastAuthOK   = 0x03
	cachingSha2FullAuthNeed = 0x04
)

// publicKeyRequest is the single byte the client sends to ask the server for
// its RSA public key when full authentication is needed over plaintext.
var publicKeyRequest = []byte{0x02}
