package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// DefaultAssignmentSecret is the built-in key material used when no secret is
// configured. Deployments must set GIFTWHISPER_TOKEN_SECRET; the server warns
// at startup when this fallback is active.
const DefaultAssignmentSecret = "giftwhisper-assignment-dev"

// ErrDecode indicates an assignment token that is malformed, was sealed under
// a different key, or does not contain a pairing list.
var ErrDecode = errors.New("assignment token decode failed")

// Pairing is one giver/receiver edge of a draw. A complete draw holds exactly
// one pairing per participant in each role.
type Pairing struct {
	GiverID    string `json:"giver_id"`
	ReceiverID string `json:"receiver_id"`
}

// AssignmentCodec seals a pairing list into an opaque token and opens it back.
// The token is the only form in which a draw leaves this package; nobody,
// including the organizer, sees the plaintext list.
type AssignmentCodec struct {
	key []byte
}

// NewAssignmentCodec derives the cipher key from secret. An empty secret
// falls back to DefaultAssignmentSecret.
func NewAssignmentCodec(secret string) *AssignmentCodec {
	if secret == "" {
		secret = DefaultAssignmentSecret
	}
	sum := sha256.Sum256([]byte(secret))
	return &AssignmentCodec{key: sum[:]}
}

// Encode serializes and seals pairings. Each call produces fresh ciphertext
// for the same input because the nonce is random; tokens are opaque and never
// compared for equality.
func (c *AssignmentCodec) Encode(pairings []Pairing) (string, error) {
	plain, err := json.Marshal(pairings)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode is the inverse of Encode. All failure paths report ErrDecode.
func (c *AssignmentCodec) Decode(token string) ([]Pairing, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: token too short", ErrDecode)
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var pairings []Pairing
	if err := json.Unmarshal(plain, &pairings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	for _, p := range pairings {
		if p.GiverID == "" || p.ReceiverID == "" {
			return nil, fmt.Errorf("%w: incomplete pairing", ErrDecode)
		}
	}
	return pairings, nil
}

// LookupReceiver decodes token and returns the receiver assigned to giverID.
// It never fails: the notification loop uses it per participant and must not
// abort on one bad lookup, so decode errors and missing givers both report
// ok=false.
func (c *AssignmentCodec) LookupReceiver(token, giverID string) (string, bool) {
	pairings, err := c.Decode(token)
	if err != nil {
		return "", false
	}
	for _, p := range pairings {
		if p.GiverID == giverID {
			return p.ReceiverID, true
		}
	}
	return "", false
}
