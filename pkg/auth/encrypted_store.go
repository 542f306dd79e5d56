package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// EnvPassphrase overrides the generated passphrase of the settings file
const EnvPassphrase = "IGLOADER_PASSPHRASE"

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore implements SettingsStore using an AES-GCM encrypted
// file whose key is derived from a passphrase with PBKDF2
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// envelope is the on-disk layout
type envelope struct {
	Version   int       `json:"version"`
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore creates a store at path. The passphrase comes from
// IGLOADER_PASSPHRASE or a generated .passphrase file next to the config.
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	passphrase, err := loadPassphrase()
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return NewEncryptedFileStoreWithPassphrase(path, passphrase)
}

// NewEncryptedFileStoreWithPassphrase creates a store with an explicit passphrase
func NewEncryptedFileStoreWithPassphrase(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// Store saves the entry to the encrypted file
func (e *EncryptedFileStore) Store(entry *Entry) error {
	if entry == nil || entry.Name == "" {
		return ErrInvalidSettings
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entries, salt, err := e.load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing settings: %w", err)
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	entries[entry.Name] = *entry

	return e.save(entries, salt)
}

// Retrieve gets the entry from the encrypted file
func (e *EncryptedFileStore) Retrieve(name string) (*Entry, error) {
	if name == "" {
		return nil, ErrInvalidSettings
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	entries, _, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	entry, ok := entries[name]
	if !ok {
		return nil, ErrSettingsNotFound
	}
	return &entry, nil
}

// List returns all entries sorted by name
func (e *EncryptedFileStore) List() ([]*Entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries, _, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	out := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		entry := entry
		out = append(out, &entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the entry. The file goes away with the last entry.
func (e *EncryptedFileStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidSettings
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entries, salt, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSettingsNotFound
		}
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if _, ok := entries[name]; !ok {
		return ErrSettingsNotFound
	}
	delete(entries, name)

	if len(entries) == 0 {
		return os.Remove(e.path)
	}
	return e.save(entries, salt)
}

// Exists checks if the entry is stored
func (e *EncryptedFileStore) Exists(name string) bool {
	entry, err := e.Retrieve(name)
	return err == nil && entry != nil
}

// load decrypts the file and returns its entries with the salt in use
func (e *EncryptedFileStore) load() (map[string]Entry, []byte, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, nil, err
	}

	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to parse file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	plain, err := open(sealed, e.key(salt))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt settings: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return entries, salt, nil
}

// save encrypts entries and replaces the file atomically. A nil salt
// means a fresh one is generated.
func (e *EncryptedFileStore) save(entries map[string]Entry, salt []byte) error {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plain, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	sealed, err := seal(plain, e.key(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt settings: %w", err)
	}

	content, err := json.MarshalIndent(envelope{
		Version:   1,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tmp, e.path)
}

func (e *EncryptedFileStore) key(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// loadPassphrase reads the passphrase from the environment or the
// passphrase file, generating the file on first use
func loadPassphrase() (string, error) {
	if pass := os.Getenv(EnvPassphrase); pass != "" {
		return pass, nil
	}

	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	passFile := filepath.Join(configDir, ".passphrase")

	if content, err := os.ReadFile(passFile); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.URLEncoding.EncodeToString(b)

	if err := os.WriteFile(passFile, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

// seal encrypts with AES-GCM, prefixing the nonce
func seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
