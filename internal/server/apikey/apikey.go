// Package apikey genera y verifica claves de API con argon2id.
//
// Una clave emitida tiene la forma "id.secreto"; en la base sólo se guarda el
// hash del secreto con su sal, codificados como "salt$hash" en base64.
package apikey

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Parámetros de argon2id.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KB
	argonThreads = 4
	argonKeyLen  = 32
	saltSize     = 16
	secretoSize  = 32
)

// ErrClaveInvalida indica que la clave no corresponde al hash guardado.
var ErrClaveInvalida = errors.New("clave de API inválida")

// Generar emite una credencial nueva: devuelve el id, la clave completa
// "id.secreto" (que sólo existe en este momento) y el hash a persistir.
func Generar() (id, clave, hash string, err error) {
	id = uuid.New().String()

	secreto := make([]byte, secretoSize)
	if _, err = rand.Read(secreto); err != nil {
		return "", "", "", fmt.Errorf("failed to generate secret: %w", err)
	}
	secretoB64 := base64.RawURLEncoding.EncodeToString(secreto)

	hash, err = Hash(secretoB64)
	if err != nil {
		return "", "", "", err
	}
	return id, id + "." + secretoB64, hash, nil
}

// Hash deriva el hash argon2id del secreto con una sal nueva.
func Hash(secreto string) (string, error) {
	if secreto == "" {
		return "", fmt.Errorf("el secreto no puede estar vacío")
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	derivado := argon2.IDKey([]byte(secreto), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(derivado), nil
}

// Verificar comprueba el secreto contra un hash "salt$hash" guardado.
func Verificar(secreto, guardado string) error {
	partes := strings.SplitN(guardado, "$", 2)
	if len(partes) != 2 {
		return fmt.Errorf("hash guardado con formato inválido")
	}

	salt, err := base64.RawStdEncoding.DecodeString(partes[0])
	if err != nil {
		return fmt.Errorf("failed to decode salt: %w", err)
	}
	esperado, err := base64.RawStdEncoding.DecodeString(partes[1])
	if err != nil {
		return fmt.Errorf("failed to decode hash: %w", err)
	}

	derivado := argon2.IDKey([]byte(secreto), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	if subtle.ConstantTimeCompare(derivado, esperado) != 1 {
		return ErrClaveInvalida
	}
	return nil
}

// Separar divide una clave "id.secreto" en sus dos partes.
func Separar(clave string) (id, secreto string, err error) {
	partes := strings.SplitN(clave, ".", 2)
	if len(partes) != 2 || partes[0] == "" || partes[1] == "" {
		return "", "", ErrClaveInvalida
	}
	return partes[0], partes[1], nil
}
