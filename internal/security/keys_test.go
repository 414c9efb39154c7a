package security

import "testing"

func TestParsePrivateKeyInlinePEM(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if signer == nil {
		t.Fatal("signer is nil")
	}
}

func TestParsePublicKeyInlinePEM(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if pub == nil {
		t.Fatal("public key is nil")
	}
}

func TestParseKeyInvalidInput(t *testing.T) {
	if _, err := ParsePrivateKey(""); err == nil {
		t.Error("empty input should fail")
	}
	if _, err := ParsePrivateKey("not pem at all"); err == nil {
		t.Error("non-PEM input should fail")
	}
	if _, err := ParsePublicKey("-----BEGIN GARBAGE-----\nabc\n-----END GARBAGE-----"); err == nil {
		t.Error("garbage PEM should fail")
	}
}
