package securestore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrCorrupt is returned when a sealed value cannot be opened
var ErrCorrupt = errors.New("securestore: sealed value cannot be opened")

// SealedStore encrypts values before handing them to the wrapped store
type SealedStore struct {
	inner Store
	key   [32]byte
}

// Sealed wraps inner with secretbox encryption under key
func Sealed(inner Store, key []byte) (*SealedStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("securestore: key must be 32 bytes, got %d", len(key))
	}
	s := &SealedStore{inner: inner}
	copy(s.key[:], key)
	return s, nil
}

func (s *SealedStore) Get(key string) (string, error) {
	enc, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	box, err := base64.StdEncoding.DecodeString(enc)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrCorrupt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrCorrupt
	}
	return string(plain), nil
}

func (s *SealedStore) Set(key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.inner.Set(key, base64.StdEncoding.EncodeToString(box))
}

func (s *SealedStore) Delete(key string) error {
	return s.inner.Delete(key)
}
