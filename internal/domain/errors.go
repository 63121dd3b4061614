package domain

import "errors"

// Errores base del dominio. Las capas superiores los envuelven con %w
// y el servidor HTTP los traduce a códigos de estado.
var (
	ErrNotFound        = errors.New("no encontrado")
	ErrInvalidData     = errors.New("datos inválidos")
	ErrNotAllowed      = errors.New("operación no permitida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrUnexpectedState = errors.New("estado inesperado")
)
