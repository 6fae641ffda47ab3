package session

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// FileStore is the fallback token store for environments without a usable
// keyring. The token file is sealed with a key derived from a host-scoped
// passphrase; this keeps casual reads out, it is not a substitute for a real
// secret service.
type FileStore struct {
	path       string
	passphrase []byte
}

// NewFileStore builds a FileStore writing to dir/session.enc.
func NewFileStore(dir string) *FileStore {
	host, _ := os.Hostname()
	return &FileStore{
		path:       filepath.Join(dir, "session.enc"),
		passphrase: []byte(serviceName + ":" + host),
	}
}

func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading session file: %w", err)
	}
	if len(data) < 32+chacha20poly1305.NonceSize {
		return "", fmt.Errorf("session file truncated")
	}
	salt := data[:32]
	nonce := data[32 : 32+chacha20poly1305.NonceSize]
	sealed := data[32+chacha20poly1305.NonceSize:]
	aead, err := f.aead(salt)
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("unsealing session file: %w", err)
	}
	return string(plain), nil
}

func (f *FileStore) Save(token string) error {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	aead, err := f.aead(salt)
	if err != nil {
		return err
	}
	sealed := aead.Seal(nil, nonce, []byte(token), nil)
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	out := append(append(salt, nonce...), sealed...)
	return os.WriteFile(f.path, out, 0o600)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(f.passphrase, salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving session key: %w", err)
	}
	return chacha20poly1305.New(key)
}
