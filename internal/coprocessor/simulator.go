package coprocessor

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	dErrors "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain-errors"
)

// Simulator is an in-process Coprocessor for local mode and tests. Plaintexts
// stay sealed inside the simulator; callers only ever hold handles. The
// padding scheme is a stand-in for real homomorphic encryption, not crypto.
//
// Decryption is exposed here (and only here) so tests can assert on outcomes
// through the same grant checks the real coprocessor would apply.
type Simulator struct {
	mu     sync.RWMutex
	seq    uint64
	values map[Handle]uint32
	bools  map[Handle]bool
	grants map[Handle]map[id.PrincipalID]struct{}
}

func NewSimulator() *Simulator {
	return &Simulator{
		values: make(map[Handle]uint32),
		bools:  make(map[Handle]bool),
		grants: make(map[Handle]map[id.PrincipalID]struct{}),
	}
}

const blobLen = 36 // 32-byte pad + 4-byte masked value

// Encrypt produces an external ciphertext blob for a u32 value. It models
// what the submitting client's wallet does before calling the registry and
// exists for dev tooling and tests.
func Encrypt(value uint32) ([]byte, error) {
	blob := make([]byte, blobLen)
	if _, err := rand.Read(blob[:32]); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	binary.BigEndian.PutUint32(blob[32:], value)
	for i := range 4 {
		blob[32+i] ^= blob[i]
	}
	return blob, nil
}

// SealProof computes the proof string expected by ImportCiphertext for a blob.
func SealProof(blob []byte) string {
	sum := blake2b.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

func (s *Simulator) ImportCiphertext(_ context.Context, blob []byte, proof string) (Handle, error) {
	if len(blob) != blobLen {
		return "", ErrInvalidCiphertext
	}
	if proof != SealProof(blob) {
		return "", ErrProofRejected
	}

	masked := make([]byte, 4)
	copy(masked, blob[32:])
	for i := range 4 {
		masked[i] ^= blob[i]
	}
	value := binary.BigEndian.Uint32(masked)

	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.nextHandle("import", blob)
	s.values[h] = value
	return h, nil
}

func (s *Simulator) EncodePublic(_ context.Context, value uint32) (Handle, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)

	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.nextHandle("public", buf[:])
	s.values[h] = value
	return h, nil
}

func (s *Simulator) GreaterThan(_ context.Context, a, b Handle) (Handle, error) {
	return s.compare(a, b, false)
}

func (s *Simulator) GreaterOrEqual(_ context.Context, a, b Handle) (Handle, error) {
	return s.compare(a, b, true)
}

func (s *Simulator) compare(a, b Handle, orEqual bool) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	va, ok := s.values[a]
	if !ok {
		return "", ErrUnknownHandle
	}
	vb, ok := s.values[b]
	if !ok {
		return "", ErrUnknownHandle
	}

	result := va > vb
	if orEqual {
		result = va >= vb
	}
	h := s.nextHandle("cmp", []byte(a+":"+b))
	s.bools[h] = result
	return h, nil
}

func (s *Simulator) GrantAccess(_ context.Context, h Handle, principal id.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.known(h) {
		return ErrUnknownHandle
	}
	set, ok := s.grants[h]
	if !ok {
		set = make(map[id.PrincipalID]struct{})
		s.grants[h] = set
	}
	set[principal] = struct{}{}
	return nil
}

// DecryptValue reveals a u32 plaintext to a principal holding a grant.
func (s *Simulator) DecryptValue(_ context.Context, h Handle, principal id.PrincipalID) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[h]
	if !ok {
		return 0, ErrUnknownHandle
	}
	if !s.granted(h, principal) {
		return 0, dErrors.New(dErrors.CodeForbidden, "principal has no decryption grant")
	}
	return v, nil
}

// DecryptBool reveals a ciphertext boolean to a principal holding a grant.
func (s *Simulator) DecryptBool(_ context.Context, h Handle, principal id.PrincipalID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.bools[h]
	if !ok {
		return false, ErrUnknownHandle
	}
	if !s.granted(h, principal) {
		return false, dErrors.New(dErrors.CodeForbidden, "principal has no decryption grant")
	}
	return v, nil
}

func (s *Simulator) known(h Handle) bool {
	if _, ok := s.values[h]; ok {
		return true
	}
	_, ok := s.bools[h]
	return ok
}

func (s *Simulator) granted(h Handle, principal id.PrincipalID) bool {
	set, ok := s.grants[h]
	if !ok {
		return false
	}
	_, ok = set[principal]
	return ok
}

// nextHandle derives a fresh opaque handle. The sequence number keeps
// re-imports of identical blobs distinct. Callers must hold s.mu.
func (s *Simulator) nextHandle(kind string, material []byte) Handle {
	s.seq++
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], s.seq)
	sum := blake2b.Sum256(append(append([]byte(kind), seq[:]...), material...))
	return Handle(hex.EncodeToString(sum[:16]))
}
