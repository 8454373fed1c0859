package razorpay

import (
	"strings"
	"testing"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	cases := []struct {
		orderID   string
		paymentID string
		secret    string
	}{
		{"order_abc123", "pay_xyz789", "test_secret"},
		{"order_1", "pay_1", "s"},
		{"order_with_longer_identifier_0001", "pay_with_longer_identifier_0001", "a-much-longer-secret-value-here"},
		{"", "", "secret"},
		{"order|weird", "pay|weird", "secret"},
	}

	for _, tc := range cases {
		sig := Sign(tc.orderID, tc.paymentID, tc.secret)
		if !VerifySignature(tc.orderID, tc.paymentID, sig, tc.secret) {
			t.Errorf("verify(%q, %q) = false, want true", tc.orderID, tc.paymentID)
		}
	}
}

func TestVerifySignatureDeterministic(t *testing.T) {
	first := Sign("order_abc123", "pay_xyz789", "test_secret")
	second := Sign("order_abc123", "pay_xyz789", "test_secret")
	if first != second {
		t.Fatalf("signatures differ: %s vs %s", first, second)
	}
	if !VerifySignature("order_abc123", "pay_xyz789", first, "test_secret") {
		t.Fatal("first verify failed")
	}
	if !VerifySignature("order_abc123", "pay_xyz789", first, "test_secret") {
		t.Fatal("second verify failed")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	sig := Sign("order_abc123", "pay_xyz789", "test_secret")

	// Flip every position to a different hex digit.
	for i := 0; i < len(sig); i++ {
		altered := []byte(sig)
		if altered[i] == 'f' {
			altered[i] = '0'
		} else {
			altered[i] = 'f'
		}
		if string(altered) == sig {
			continue
		}
		if VerifySignature("order_abc123", "pay_xyz789", string(altered), "test_secret") {
			t.Fatalf("accepted signature altered at position %d", i)
		}
	}
}

func TestVerifySignatureRejectsTruncation(t *testing.T) {
	sig := Sign("order_abc123", "pay_xyz789", "test_secret")
	if VerifySignature("order_abc123", "pay_xyz789", sig[:len(sig)-1], "test_secret") {
		t.Fatal("accepted truncated signature")
	}
	if VerifySignature("order_abc123", "pay_xyz789", "", "test_secret") {
		t.Fatal("accepted empty signature")
	}
	if VerifySignature("order_abc123", "pay_xyz789", sig+"00", "test_secret") {
		t.Fatal("accepted extended signature")
	}
}

func TestVerifySignatureRejectsUppercaseHex(t *testing.T) {
	sig := Sign("order_abc123", "pay_xyz789", "test_secret")
	upper := strings.ToUpper(sig)
	if upper == sig {
		t.Skip("signature has no letters")
	}
	if VerifySignature("order_abc123", "pay_xyz789", upper, "test_secret") {
		t.Fatal("comparison must be byte-for-byte against lowercase hex")
	}
}

func TestVerifySignatureWrongOrder(t *testing.T) {
	// Signature computed over a different order id must not verify.
	sig := Sign("order_other", "pay_xyz789", "test_secret")
	if VerifySignature("order_abc123", "pay_xyz789", sig, "test_secret") {
		t.Fatal("accepted signature for a different order")
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	sig := Sign("order_abc123", "pay_xyz789", "test_secret")
	if VerifySignature("order_abc123", "pay_xyz789", sig, "other_secret") {
		t.Fatal("accepted signature under a different secret")
	}
}

func TestVerifySignatureSeparatorAmbiguity(t *testing.T) {
	// "a|b" + "c" and "a" + "b|c" must not collide.
	sig := Sign("a|b", "c", "test_secret")
	if VerifySignature("a", "b|c", sig, "test_secret") {
		t.Fatal("identifier boundary ambiguity")
	}
}
