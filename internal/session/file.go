package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	nonceSize  = 24
	sealedMark = "gcs1:"
)

// FilePersister CLI 용. 키마다 파일 하나(0600). secret 이 있으면 secretbox 로 봉인한다.
type FilePersister struct {
	dir    string
	key    *[32]byte
	sealed bool
}

func NewFilePersister(dir, secret string) (*FilePersister, error) {
	if dir == "" {
		return nil, errors.New("session: file persister dir required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	fp := &FilePersister{dir: dir}
	if secret != "" {
		k, err := deriveKey(secret)
		if err != nil {
			return nil, err
		}
		fp.key = k
		fp.sealed = true
	}
	return fp, nil
}

func deriveKey(secret string) (*[32]byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("garden-console session file"))
	var k [32]byte
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return nil, err
	}
	return &k, nil
}

func (f *FilePersister) path(key string) string {
	name := strings.NewReplacer("/", "_", ":", "_", "\\", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

func (f *FilePersister) Load(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !f.sealed {
		return b, nil
	}
	return f.open(b)
}

func (f *FilePersister) open(b []byte) ([]byte, error) {
	if !strings.HasPrefix(string(b), sealedMark) || len(b) < len(sealedMark)+nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: not a sealed record", ErrCorrupt)
	}
	b = b[len(sealedMark):]
	var nonce [nonceSize]byte
	copy(nonce[:], b[:nonceSize])
	out, ok := secretbox.Open(nil, b[nonceSize:], &nonce, f.key)
	if !ok {
		return nil, fmt.Errorf("%w: seal check failed", ErrCorrupt)
	}
	return out, nil
}

func (f *FilePersister) Save(_ context.Context, key string, data []byte) error {
	if f.sealed {
		var nonce [nonceSize]byte
		if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
			return err
		}
		out := append([]byte(sealedMark), nonce[:]...)
		data = secretbox.Seal(out, data, &nonce, f.key)
	}
	p := f.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (f *FilePersister) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
