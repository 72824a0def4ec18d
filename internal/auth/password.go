package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher turns a plaintext password into a storable digest and checks
// login attempts against it. The secret key is bound at construction.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// NewPasswordHasher returns the hasher for the configured scheme.
func NewPasswordHasher(scheme, key string) (PasswordHasher, error) {
	switch scheme {
	case "", "hmac":
		return NewHMACHasher(key)
	case "argon2id":
		return NewArgon2Hasher(key)
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// HMACHasher computes base64(HMAC-SHA256(key, password)). The key is shared by
// every record, there is no per-user salt.
type HMACHasher struct {
	key []byte
}

func NewHMACHasher(key string) (*HMACHasher, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: password hmac key", ErrConfigurationMissing)
	}
	return &HMACHasher{key: []byte(key)}, nil
}

func (h *HMACHasher) mac(password string) []byte {
	m := hmac.New(sha256.New, h.key)
	m.Write([]byte(password))
	return m.Sum(nil)
}

func (h *HMACHasher) Hash(password string) (string, error) {
	return base64.StdEncoding.EncodeToString(h.mac(password)), nil
}

func (h *HMACHasher) Verify(password, digest string) bool {
	want, err := base64.StdEncoding.DecodeString(digest)
	if err != nil {
		return false
	}
	return hmac.Equal(h.mac(password), want)
}

const (
	defaultArgonTime    = 1
	defaultArgonMemory  = 64 * 1024
	defaultArgonThreads = 4
	argonSaltLen        = 16
	argonKeyLen         = 32
)

type argonParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

type Argon2Option func(*argonParams)

// WithArgonCost overrides the argon2id iterations, memory (KiB) and threads.
// Zero values keep the defaults.
func WithArgonCost(time, memory uint32, threads uint8) Argon2Option {
	return func(p *argonParams) {
		if time > 0 {
			p.time = time
		}
		if memory > 0 {
			p.memory = memory
		}
		if threads > 0 {
			p.threads = threads
		}
	}
}

// Argon2Hasher stores PHC-formatted argon2id digests with a random per-user
// salt. The server key is applied as a pepper before the KDF, so a leaked
// table alone is not enough to mount a dictionary attack.
type Argon2Hasher struct {
	pepper *HMACHasher
	params argonParams
}

func NewArgon2Hasher(key string, opts ...Argon2Option) (*Argon2Hasher, error) {
	pepper, err := NewHMACHasher(key)
	if err != nil {
		return nil, err
	}
	p := argonParams{
		time:    defaultArgonTime,
		memory:  defaultArgonMemory,
		threads: defaultArgonThreads,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return &Argon2Hasher{pepper: pepper, params: p}, nil
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey(h.pepper.mac(password), salt, h.params.time, h.params.memory, h.params.threads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.memory, h.params.time, h.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum)), nil
}

func (h *Argon2Hasher) Verify(password, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}
	var p argonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}
	got := argon2.IDKey(h.pepper.mac(password), salt, p.time, p.memory, p.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
