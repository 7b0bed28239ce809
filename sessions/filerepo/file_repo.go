package filerepo

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var _ sessions.Repo = (*Repo)(nil)

const (
	filePerm = 0o600
	dirPerm  = 0o700
	keyInfo  = "mindcare-session-file"
)

// Repo persists the session entries as one JSON document. Every write goes
// to a temporary file that is renamed over the target, so a reader sees
// either the old pair of entries or the new one.
type Repo struct {
	path   string
	secret string
	lock   sync.Mutex
}

type Option func(*Repo)

// WithSecret seals the file with XChaCha20-Poly1305 under a key derived
// from secret. An empty secret leaves the file in plain JSON.
func WithSecret(secret string) Option {
	return func(r *Repo) {
		r.secret = secret
	}
}

func New(path string, options ...Option) (*Repo, error) {
	if path == "" {
		return nil, errors.New("[filerepo.New] path is required")
	}
	r := &Repo{path: path}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

func (r *Repo) Load(_ context.Context) (*sessions.Record, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filerepo.Load] read")
	}

	if r.secret != "" {
		if data, err = r.open(data); err != nil {
			return nil, errors.Wrapf(sessions.ErrCorruptRecord, "[filerepo.Load] %v", err)
		}
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(sessions.ErrCorruptRecord, "[filerepo.Load] %v", err)
	}
	record, ok, err := sessions.DecodeEntries(entries)
	if err != nil {
		return nil, errors.Wrap(err, "[filerepo.Load]")
	}
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

func (r *Repo) Save(_ context.Context, record sessions.Record) error {
	entries, err := sessions.EncodeEntries(record)
	if err != nil {
		return errors.Wrap(err, "[filerepo.Save]")
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "[filerepo.Save] marshal")
	}
	if r.secret != "" {
		if data, err = r.seal(data); err != nil {
			return errors.Wrap(err, "[filerepo.Save] seal")
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	return r.writeAtomic(data)
}

func (r *Repo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "[filerepo.Clear] remove")
	}
	return nil
}

func (r *Repo) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrap(err, "[filerepo.Save] mkdir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "[filerepo.Save] create temp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filerepo.Save] chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filerepo.Save] write")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filerepo.Save] sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[filerepo.Save] close")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrap(err, "[filerepo.Save] rename")
	}
	return nil
}

func (r *Repo) key() ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(r.secret), nil, []byte(keyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, err
	}
	return key, nil
}

// seal returns nonce || ciphertext
func (r *Repo) seal(plaintext []byte) ([]byte, error) {
	key, err := r.key()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (r *Repo) open(sealed []byte) ([]byte, error) {
	key, err := r.key()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed data too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
