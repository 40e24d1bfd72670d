package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateID cria o identificador curto usado em execuções de sincronização
// e em donos de lease.
func GenerateID() (string, error) {
	return gonanoid.Generate(idAlphabet, 12)
}
