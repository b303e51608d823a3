package xtender

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DefaultKeyFile is used unless a key file path is given on the command line.
const DefaultKeyFile = "/opt/itrs/xtender/secret.key"

// secretMarker prefixes Opsview encrypted variable values.
const secretMarker = "+encs+"

// KeyFile holds the AES-256-CBC material used to decrypt secret variables.
//
// Example file content:
//
//	salt=89A6A795C9CCECB5
//	key=26D6EDD53A0AFA8FA1AA3FBCD2FFF2A0BF4809A4E04511F629FC732C2A42A8FC
//	iv =472A3557ADDD2525AD4E555738636A67
type KeyFile struct {
	Salt string
	key  string
	iv   string
}

// ParseKeyFile parses the 2-3 line key file format, the salt line is optional.
func ParseKeyFile(raw []byte) (*KeyFile, error) {
	trimmed := strings.TrimRight(string(raw), "\n")
	lines := strings.Split(trimmed, "\n")
	if trimmed == "" {
		lines = nil
	}

	if len(lines) > 3 {
		return nil, fmt.Errorf("key file too long, expected 2-3 lines, %d lines found", len(lines))
	}

	keyFile := &KeyFile{}
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "salt="):
			keyFile.Salt = strings.TrimPrefix(line, "salt=")
		case strings.HasPrefix(line, "key="):
			keyFile.key = strings.TrimPrefix(line, "key=")
		case strings.HasPrefix(line, "iv ="):
			keyFile.iv = strings.TrimPrefix(line, "iv =")
		default:
			return nil, fmt.Errorf("invalid line: %s", line)
		}
	}

	if keyFile.Salt == "" {
		log.Debugf("the key file is missing the salt, this is not a problem")
	}
	if keyFile.key == "" {
		return nil, fmt.Errorf(`missing key, no line starting with "key=" found`)
	}
	if keyFile.iv == "" {
		return nil, fmt.Errorf(`missing iv, no line starting with "iv =" found`)
	}

	return keyFile, nil
}

// LoadKeyFile reads and parses the key file at the given path.
func LoadKeyFile(path string) (*KeyFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read key file: %s", err.Error())
	}

	keyFile, err := ParseKeyFile(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to parse key file %s: %s", path, err.Error())
	}

	return keyFile, nil
}

// isPotentiallyEncrypted reports whether a value looks like an encrypted
// secret. It cannot give a certain positive, only a certain negative.
func isPotentiallyEncrypted(s string) bool {
	if !strings.HasPrefix(s, secretMarker) {
		return false
	}

	for _, c := range s[len(secretMarker):] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return true
}

// Decrypt decodes and decrypts a +encs+ value into its clear text.
func (k *KeyFile) Decrypt(s string) (string, error) {
	encrypted, err := hex.DecodeString(strings.TrimPrefix(s, secretMarker))
	if err != nil {
		return "", fmt.Errorf("invalid hex in encrypted value: %s", err.Error())
	}

	key, err := hex.DecodeString(k.key)
	if err != nil {
		return "", fmt.Errorf("invalid hex in key: %s", err.Error())
	}
	if len(key) != 32 {
		return "", fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}

	initVector, err := hex.DecodeString(k.iv)
	if err != nil {
		return "", fmt.Errorf("invalid hex in iv: %s", err.Error())
	}
	if len(initVector) != aes.BlockSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(initVector))
	}

	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("encrypted value is not a multiple of the aes block size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("aes: %s", err.Error())
	}

	clear := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, initVector).CryptBlocks(clear, encrypted)

	clear, err = pkcs7Unpad(clear)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(clear) {
		return "", fmt.Errorf("decrypted value is not valid utf-8")
	}

	return string(clear), nil
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("invalid padding")
		}
	}

	return data[:len(data)-padding], nil
}

// KeyStore shares one optional key file between concurrent check builds.
type KeyStore struct {
	lock deadlock.RWMutex
	key  *KeyFile
}

func NewKeyStore() *KeyStore {
	return &KeyStore{}
}

func (s *KeyStore) Set(key *KeyFile) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.key = key
}

// Get returns the stored key file or nil. A nil store is treated as empty.
func (s *KeyStore) Get() *KeyFile {
	if s == nil {
		return nil
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.key
}
