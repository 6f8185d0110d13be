package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func hs256Token(secret, payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(header + "." + body))
	return header + "." + body + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyDevToken(t *testing.T) {
	v := NewVerifier("dev", "")
	p, err := v.Verify("acme:Dispatcher")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Tenant != "acme" || p.Role != "dispatcher" {
		t.Fatalf("principal = %+v", p)
	}
	if _, err := v.Verify("no-role"); err == nil {
		t.Fatal("token without role must fail")
	}
}

func TestVerifyHMACToken(t *testing.T) {
	v := NewVerifier("hmac", "topsecret")
	tok := hs256Token("topsecret", `{"tenant":"acme","role":"admin"}`)
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Tenant != "acme" || p.Role != "admin" {
		t.Fatalf("principal = %+v", p)
	}

	if _, err := v.Verify(hs256Token("wrong", `{"tenant":"acme"}`)); err == nil {
		t.Fatal("wrong secret must fail")
	}
	if _, err := v.Verify(hs256Token("topsecret", `{"role":"admin"}`)); err == nil {
		t.Fatal("missing tenant claim must fail")
	}
	if _, err := v.Verify("not.a.jwt!"); err == nil {
		t.Fatal("garbage token must fail")
	}
}
