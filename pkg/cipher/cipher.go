package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrInvalidCiphertext = errors.New("texto cifrado inválido")

// Cipher criptografa segredos pequenos (refresh tokens) antes de irem para
// o banco. A chave simétrica é derivada da SECRET_KEY da aplicação, então
// trocar a SECRET_KEY invalida os tokens armazenados.
type Cipher struct {
	key [32]byte
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("secret key não pode ser vazia")
	}

	return &Cipher{key: sha256.Sum256([]byte(secret))}, nil
}

// Encrypt retorna o texto cifrado em base64, com o nonce prefixado
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	if len(raw) < 24 {
		return "", ErrInvalidCiphertext
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
