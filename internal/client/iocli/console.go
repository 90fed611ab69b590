package iocli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Console es la implementación real de IO sobre stdin/stdout.
type Console struct {
	reader *bufio.Reader
}

// NewConsole returns an IO backed by the process terminal.
func NewConsole() *Console {
	return &Console{reader: bufio.NewReader(os.Stdin)}
}

func (c *Console) Println(a ...any) {
	fmt.Println(a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

// ReadInput lee una línea de stdin.
func (c *Console) ReadInput(prompt string) (string, error) {
	fmt.Print(prompt)
	input, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword lee una clave sin eco en pantalla.
func (c *Console) ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // salto de línea tras la clave
	if err != nil {
		return "", err
	}
	return string(passwordBytes), nil
}
